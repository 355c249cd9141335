package catalog

// SearchServiceFixture returns an ElasticSearch service descriptor pointing
// at the catalog's bundled search container.
func SearchServiceFixture(name string) Service {
	return Service{
		Name:        name,
		ServiceType: "ElasticSearch",
		Connection: Connection{
			Config: map[string]any{
				"type":     "ElasticSearch",
				"hostPort": "elasticsearch:9200",
				"authType": map[string]any{
					"username": "admin",
					"password": "admin",
				},
				"connectionTimeoutSecs":      30,
				"supportsMetadataExtraction": true,
			},
		},
	}
}

// SearchIndexFields returns the field layout of the table-entity search
// index: three text leaves and a nested "columns" field with two children.
func SearchIndexFields() []Field {
	return []Field{
		NewField("name", DataTypeText, "Table Entity Name."),
		NewField("databaseSchema", DataTypeText, "Table Entity Database Schema."),
		NewField("description", DataTypeText, "Table Entity Description."),
		NewField("columns", DataTypeNested, "Table Columns.").WithChildren(
			NewField("name", DataTypeText, "Column Name."),
			NewField("description", DataTypeText, "Column Description."),
		),
	}
}

// SearchIndexFixture returns a qualified search index descriptor owned by service.
func SearchIndexFixture(service, name string) Entity {
	return Entity{
		Kind:        KindSearchIndex,
		Name:        name,
		DisplayName: name,
		Service:     service,
		Fields:      SearchIndexFields(),
	}.Qualified()
}
