// Package jsonld is a small typed document tree for JSON-LD output.
//
// Documents are built from Object, Array, String and Int nodes. Objects keep
// their members in insertion order so the emitted text is deterministic, and
// nil arrays are written as [] rather than null.
//
//	doc := jsonld.Obj(
//	    jsonld.F("@context", jsonld.String(jsonld.SchemaOrg)),
//	    jsonld.F("@type", jsonld.String("WebPage")),
//	)
//	text := jsonld.Encode(doc)
package jsonld

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SchemaOrg is the @context value of every document.
const SchemaOrg = "https://schema.org"

// Node is one value in a document tree.
type Node interface {
	json.Marshaler
	write(buf *bytes.Buffer)
}

// String is a JSON string.
type String string

// Int is a JSON integer.
type Int int

// Array is an ordered JSON array.
type Array []Node

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Node
}

// Object is a JSON object whose members are emitted in order.
type Object []Member

// F builds an object member.
func F(key string, value Node) Member {
	return Member{Key: key, Value: value}
}

// Obj builds an object from members.
func Obj(members ...Member) Object {
	return Object(members)
}

// Strings converts a string slice to an Array of String nodes. A nil slice
// yields an empty array.
func Strings(ss []string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// Map builds an Array by applying fn to every element of items.
func Map[T any](items []T, fn func(T) Node) Array {
	arr := make(Array, len(items))
	for i, it := range items {
		arr[i] = fn(it)
	}
	return arr
}

// Get returns the value stored under key, or nil.
func (o Object) Get(key string) Node {
	for _, m := range o {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Keys returns the member keys in emission order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Encode serializes a document tree. Encoding an in-memory tree cannot fail.
func Encode(n Node) string {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n Node) {
	if n == nil {
		buf.WriteString("null")
		return
	}
	n.write(buf)
}

func writeString(buf *bytes.Buffer, s string) {
	// json.Marshal of a string only fails on invalid types; strings are always valid.
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func (s String) write(buf *bytes.Buffer) { writeString(buf, string(s)) }

func (i Int) write(buf *bytes.Buffer) {
	buf.WriteString(strconv.Itoa(int(i)))
}

func (a Array) write(buf *bytes.Buffer) {
	buf.WriteByte('[')
	for i, n := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeNode(buf, n)
	}
	buf.WriteByte(']')
}

func (o Object) write(buf *bytes.Buffer) {
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, m.Key)
		buf.WriteByte(':')
		writeNode(buf, m.Value)
	}
	buf.WriteByte('}')
}

// MarshalJSON implements json.Marshaler.
func (s String) MarshalJSON() ([]byte, error) { return marshal(s) }

// MarshalJSON implements json.Marshaler.
func (i Int) MarshalJSON() ([]byte, error) { return marshal(i) }

// MarshalJSON implements json.Marshaler.
func (a Array) MarshalJSON() ([]byte, error) { return marshal(a) }

// MarshalJSON implements json.Marshaler.
func (o Object) MarshalJSON() ([]byte, error) { return marshal(o) }

func marshal(n Node) ([]byte, error) {
	var buf bytes.Buffer
	n.write(&buf)
	return buf.Bytes(), nil
}
