package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/artpar/catalogctl/domain/catalog"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    catalog.Category
		wantErr bool
	}{
		{"search", catalog.CategorySearch, false},
		{"searchServices", catalog.CategorySearch, false},
		{"databases", catalog.CategoryDatabase, false},
		{"spreadsheets", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"version"}, "catalogctl dev"},
		{[]string{"nav", "selected", "/settings/services/databases"}, "settings"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)
			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute error: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.want)
			}
		})
	}
}
