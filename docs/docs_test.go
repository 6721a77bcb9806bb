package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestCompletedFilterIsDocumented(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var doc struct {
		Paths map[string]map[string]struct {
			Parameters []struct {
				Name        string `json:"name"`
				Type        string `json:"type"`
				Description string `json:"description"`
			} `json:"parameters"`
		} `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	for _, p := range doc.Paths["/todos"]["get"].Parameters {
		if p.Name != "filter[is_completed]" {
			continue
		}
		if p.Type != "string" || p.Description != "1 or true for completed, 0 or false for open; other values are ignored" {
			t.Errorf("filter[is_completed] = %+v", p)
		}
		return
	}
	t.Error("filter[is_completed] is not documented on GET /todos")
}
