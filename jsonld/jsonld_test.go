package jsonld

import (
	"encoding/json"
	"testing"
)

func TestEncode_KeepsInsertionOrder(t *testing.T) {
	doc := Obj(
		F("z", String("last-alphabetically")),
		F("a", Int(1)),
		F("m", Array{String("x"), Int(2)}),
	)
	got := Encode(doc)
	want := `{"z":"last-alphabetically","a":1,"m":["x",2]}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestEncode_EmptyCollections(t *testing.T) {
	doc := Obj(
		F("nilArray", Strings(nil)),
		F("emptyArray", Array{}),
		F("typedNil", Array(nil)),
		F("emptyObject", Obj()),
	)
	got := Encode(doc)
	want := `{"nilArray":[],"emptyArray":[],"typedNil":[],"emptyObject":{}}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestEncode_StringEscaping(t *testing.T) {
	got := Encode(String("Tom & \"Jerry\"\n"))
	var back string
	if err := json.Unmarshal([]byte(got), &back); err != nil {
		t.Fatalf("invalid JSON %s: %v", got, err)
	}
	if back != "Tom & \"Jerry\"\n" {
		t.Fatalf("round trip: got %q", back)
	}
}

func TestEncode_Nested(t *testing.T) {
	doc := Obj(
		F("@context", String(SchemaOrg)),
		F("@graph", Array{
			Obj(F("@id", String("a"))),
			Obj(F("publisher", Obj(F("@id", String("a"))))),
		}),
	)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(Encode(doc)), &parsed); err != nil {
		t.Fatal(err)
	}
	graph := parsed["@graph"].([]any)
	if len(graph) != 2 {
		t.Fatalf("graph len: got %d", len(graph))
	}
}

func TestMarshalJSON_MatchesEncode(t *testing.T) {
	doc := Obj(F("b", String("1")), F("a", Strings([]string{"x", "y"})))
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != Encode(doc) {
		t.Fatalf("json.Marshal: %s, Encode: %s", b, Encode(doc))
	}
}

func TestObject_GetAndKeys(t *testing.T) {
	doc := Obj(F("b", Int(2)), F("a", Int(1)))
	if doc.Get("a") != Int(1) {
		t.Errorf("Get(a): got %v", doc.Get("a"))
	}
	if doc.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
	keys := doc.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys: got %v", keys)
	}
}

func TestMap(t *testing.T) {
	arr := Map([]int{3, 1}, func(i int) Node { return Int(i * 10) })
	if Encode(arr) != "[30,10]" {
		t.Fatalf("got %s", Encode(arr))
	}
	if Encode(Map([]int(nil), func(i int) Node { return Int(i) })) != "[]" {
		t.Fatal("nil input should encode as []")
	}
}
