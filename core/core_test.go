package core

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestOperations_JSON_Unmarshalling(t *testing.T) {

	type Object struct {
		Operations []Operation `json:"operations"`
	}
	var object Object
	jsonRead := `{"operations":["list","read","create","update","delete"]}`
	err := json.Unmarshal([]byte(jsonRead), &object)
	if err != nil {
		t.Fatal(err)
	}
	if len(object.Operations) != 5 || object.Operations[4] != OperationDelete {
		t.Fatal("unexpected operations:", object.Operations)
	}

	jsonRead = `{"operations":["clear"]}`
	err = json.Unmarshal([]byte(jsonRead), &object)
	if err == nil {
		t.Fatal("invalid operation accepted")
	}

}

func TestPlural(t *testing.T) {
	for singular, plural := range map[string]string{
		"widget":  "widgets",
		"company": "companies",
		"child":   "children",
	} {
		if p := Plural(singular); p != plural {
			t.Fatalf("unexpected plural for %s: %s", singular, p)
		}
	}
}
