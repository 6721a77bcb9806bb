package dto

import (
	"errors"
	"strings"
	"testing"
)

func decode(t *testing.T, body string) TodoRequest {
	t.Helper()
	req, err := DecodeTodoRequest([]byte(body))
	if err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return req
}

func fieldKinds(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	out := make(map[string]string, len(verr.Errors))
	for _, fe := range verr.Errors {
		out[fe.Field] = fe.Kind
	}
	return out
}

func TestDecodeTodoRequestPresence(t *testing.T) {
	req := decode(t, `{"description": null, "is_completed": 1}`)
	if req.Title.Present {
		t.Error("title should be absent")
	}
	if !req.Description.Present || !req.Description.Null {
		t.Errorf("description should be present and null: %+v", req.Description)
	}
	if !req.IsCompleted.Present || !bool(req.IsCompleted.Value) {
		t.Errorf("is_completed should be present and true: %+v", req.IsCompleted)
	}

	empty := decode(t, "  ")
	if empty.Title.Present || empty.Description.Present || empty.IsCompleted.Present {
		t.Error("empty body should have no fields")
	}

	if _, err := DecodeTodoRequest([]byte(`{"title":`)); err == nil {
		t.Error("truncated JSON should fail")
	}
	if _, err := DecodeTodoRequest([]byte(`["title"]`)); err == nil {
		t.Error("array body should fail")
	}
}

func TestValidateCreate(t *testing.T) {
	ch, err := ValidateCreate(decode(t, `{"title": "  Buy milk  ", "description": "2% milk"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.Title.Set || ch.Title.Value != "Buy milk" {
		t.Errorf("title = %+v", ch.Title)
	}
	if !ch.Description.Set || *ch.Description.Value != "2% milk" {
		t.Errorf("description = %+v", ch.Description)
	}
	if ch.IsCompleted.Set {
		t.Error("is_completed should be unset when omitted")
	}

	ch, err = ValidateCreate(decode(t, `{"title": "x", "description": "", "is_completed": null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.Description.Set || ch.Description.Value != nil {
		t.Error("empty description should become null")
	}
	if ch.IsCompleted.Set {
		t.Error("null is_completed on create should fall back to the default")
	}
}

func TestValidateCreateReportsEveryField(t *testing.T) {
	body := `{"description": ` + `"` + strings.Repeat("d", MaxDescriptionLength+1) + `"` + `, "is_completed": "yes"}`
	_, err := ValidateCreate(decode(t, body))
	got := fieldKinds(t, err)
	want := map[string]string{
		"title":        KindRequired,
		"description":  KindMaxLength,
		"is_completed": KindType,
	}
	if len(got) != len(want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
	for f, k := range want {
		if got[f] != k {
			t.Errorf("%s: kind %q, want %q", f, got[f], k)
		}
	}
}

func TestValidateTitleRules(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind string
	}{
		{"missing", `{}`, KindRequired},
		{"null", `{"title": null}`, KindRequired},
		{"blank", `{"title": "   "}`, KindRequired},
		{"number", `{"title": 42}`, KindType},
		{"too long", `{"title": "` + strings.Repeat("t", MaxTitleLength+1) + `"}`, KindMaxLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateReplace(decode(t, tc.body))
			if got := fieldKinds(t, err)["title"]; got != tc.kind {
				t.Errorf("kind = %q, want %q", got, tc.kind)
			}
		})
	}
}

func TestValidateTitleCountsCharacters(t *testing.T) {
	title := strings.Repeat("é", MaxTitleLength)
	ch, err := ValidateCreate(decode(t, `{"title": "`+title+`"}`))
	if err != nil {
		t.Fatalf("255 two-byte characters should pass: %v", err)
	}
	if ch.Title.Value != title {
		t.Error("title changed during validation")
	}
}

func TestValidateReplaceKeepsOmittedFields(t *testing.T) {
	ch, err := ValidateReplace(decode(t, `{"title": "B"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Description.Set || ch.IsCompleted.Set {
		t.Errorf("omitted fields must stay unset: %+v", ch)
	}

	ch, err = ValidateReplace(decode(t, `{"title": "B", "description": null, "is_completed": null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.Description.Set || ch.Description.Value != nil {
		t.Error("explicit null description should clear it")
	}
	if ch.IsCompleted.Set {
		t.Error("null is_completed on replace should keep the stored value")
	}
}

func TestValidatePatch(t *testing.T) {
	ch, err := ValidatePatch(decode(t, `{}`))
	if err != nil {
		t.Fatalf("empty patch should be valid: %v", err)
	}
	if ch.Title.Set || ch.Description.Set || ch.IsCompleted.Set {
		t.Errorf("empty patch should change nothing: %+v", ch)
	}

	ch, err = ValidatePatch(decode(t, `{"description": "x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Title.Set || ch.IsCompleted.Set || !ch.Description.Set {
		t.Errorf("only description should be set: %+v", ch)
	}

	ch, err = ValidatePatch(decode(t, `{"is_completed": "0"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.IsCompleted.Set || ch.IsCompleted.Value {
		t.Errorf("is_completed should be set to false: %+v", ch.IsCompleted)
	}

	_, err = ValidatePatch(decode(t, `{"title": null, "is_completed": null, "description": null}`))
	got := fieldKinds(t, err)
	if got["title"] != KindNull || got["is_completed"] != KindNull {
		t.Errorf("errors = %v", got)
	}
	if _, ok := got["description"]; ok {
		t.Error("null description is allowed on patch")
	}
}

func TestFlagForms(t *testing.T) {
	for body, want := range map[string]bool{
		`true`: true, `1`: true, `"1"`: true, `"true"`: true,
		`false`: false, `0`: false, `"0"`: false, `"false"`: false,
	} {
		var f Flag
		if err := f.UnmarshalJSON([]byte(body)); err != nil {
			t.Errorf("%s: %v", body, err)
			continue
		}
		if bool(f) != want {
			t.Errorf("%s = %v, want %v", body, f, want)
		}
	}
	for _, body := range []string{`2`, `"yes"`, `[]`, `{}`} {
		var f Flag
		if err := f.UnmarshalJSON([]byte(body)); err == nil {
			t.Errorf("%s should not be a boolean", body)
		}
	}
}

func TestRepeatedKeyUsesLastValue(t *testing.T) {
	ch, err := ValidateCreate(decode(t, `{"title": 1, "title": "ok"}`))
	if err != nil {
		t.Fatalf("a later valid title should replace the bad one: %v", err)
	}
	if ch.Title.Value != "ok" {
		t.Errorf("title = %q", ch.Title.Value)
	}

	req := decode(t, `{"description": "x", "description": null}`)
	if !req.Description.Null || req.Description.Value != "" {
		t.Errorf("description = %+v, want only the null", req.Description)
	}

	req = decode(t, `{"is_completed": null, "is_completed": true}`)
	if req.IsCompleted.Null || !bool(req.IsCompleted.Value) {
		t.Errorf("is_completed = %+v", req.IsCompleted)
	}
}
