package app

import (
	"fmt"
	"strings"
)

// SelectorsVersion identifies the data-testid contract below. Bump it when
// the UI renames any selector.
const SelectorsVersion = "1"

// UI selectors, keyed by the data-testid the catalog UI renders.
const (
	SelSearchBar          = `[data-testid="searchbar"]`
	SelEntityHeaderName   = `[data-testid="entity-header-display-name"]`
	SelManageButton       = `[data-testid="manage-button"]`
	SelDeleteMenuItem     = `[data-menu-id*="delete-button"]`
	SelDeleteButtonTitle  = `[data-testid="delete-button-title"]`
	SelHardDeleteOption   = `[data-testid="hard-delete-option"]`
	SelConfirmationInput  = `[data-testid="confirmation-text-input"]`
	SelConfirmButton      = `[data-testid="confirm-button"]`
	SelAlertBar           = `[data-testid="alert-bar"]`
	SelAlertMessage       = `[data-testid="alert-message"]`
	SelAlertClose         = `[data-testid="alert-icon-close"]`
	SelTestConnectionBtn  = `[data-testid="test-connection-btn"]`
	SelTestConnectionBody = `[data-testid="test-connection-modal"]`
	SelSuccessBadge       = `[data-testid="success-badge"]`
	SelWarningBadge       = `[data-testid="warning-badge"]`
	SelMessageText        = `[data-testid="messag-text"]`
)

// SelTestID selects an element by its data-testid.
func SelTestID(id string) string {
	return fmt.Sprintf(`[data-testid=%q]`, id)
}

// SelServiceName selects a service row in the services list.
func SelServiceName(name string) string {
	return SelTestID("service-name-" + name)
}

// SelHardDeleteTarget selects the hard-delete option text naming the service.
func SelHardDeleteTarget(name string) string {
	return fmt.Sprintf(`//*[@data-testid="hard-delete-option"]//*[contains(text(), %s)]`, xpathLiteral(name))
}

// SelModalOK selects the first OK button on the page.
func SelModalOK() string {
	return `//button[normalize-space()="OK"]`
}

// SelModalTitle selects the title of the test connection modal.
func SelModalTitle() string {
	return SelTestConnectionBody + ` .ant-modal-title`
}

// SelHighlightedField selects a form field flagged as highlighted.
func SelHighlightedField(field string) string {
	return fmt.Sprintf(`[data-id=%q][data-highlighted="true"]`, field)
}

// SelSearchResult selects an explore search result card.
func SelSearchResult(serviceName, entityName string) string {
	return SelTestID(serviceName + "-" + entityName)
}

// xpathLiteral quotes s as an XPath string literal.
func xpathLiteral(s string) string {
	if !strings.ContainsRune(s, '"') {
		return `"` + s + `"`
	}
	if !strings.ContainsRune(s, '\'') {
		return `'` + s + `'`
	}
	// concat("a", '"', "b") for strings holding both quote kinds
	out := "concat("
	part := ""
	for _, r := range s {
		if r == '"' {
			out += `"` + part + `", '"', `
			part = ""
			continue
		}
		part += string(r)
	}
	return out + `"` + part + `")`
}
