package variant

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// The legacy sync produced SKUs like "17008_Black" whose numeric prefix
// is a retired variant ID. This table maps them to the partner's current
// catalog variant IDs.
//
//go:embed mapping_table.json
var embeddedMappingTable []byte

// LoadMappingTable returns the legacy SKU mapping table. A non-empty
// path overrides the embedded table with an operator-maintained file of
// the same JSON shape.
func LoadMappingTable(path string) (map[string]int64, error) {
	data := embeddedMappingTable
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read mapping table %s: %w", path, err)
		}
		data = fileData
	}
	table := make(map[string]int64)
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse mapping table: %w", err)
	}
	return table, nil
}
