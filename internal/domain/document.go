package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Extra is what a stored JSON object carried beyond the fields this program
// manages. It is zero for objects built in code and for objects stored with
// exactly the managed keys in their usual order.
type Extra struct {
	// Order lists the keys in the order they were read.
	Order []string
	// Unknown holds unmanaged keys with their compacted raw values.
	Unknown map[string]json.RawMessage
}

// absent reports whether an object read from disk lacked key.
func (e Extra) absent(key string) bool {
	return e.Order != nil && !slices.Contains(e.Order, key)
}

func (e Extra) clone() Extra {
	out := Extra{Order: cloneStrings(e.Order)}
	if e.Unknown != nil {
		out.Unknown = make(map[string]json.RawMessage, len(e.Unknown))
		for k, v := range e.Unknown {
			out.Unknown[k] = slices.Clone(v)
		}
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// field is one managed key of an object being written.
type field struct {
	key   string
	value any
	// zero fields are skipped when the key was absent on disk, or always
	// when omitEmpty is set.
	zero      bool
	omitEmpty bool
}

func (c Config) MarshalJSON() ([]byte, error) {
	var depts json.RawMessage
	if c.Departments != nil {
		raw, err := c.marshalDepartments()
		if err != nil {
			return nil, err
		}
		depts = raw
	}
	return marshalObject([]field{
		{key: "admin_password", value: c.AdminPassword, zero: c.AdminPassword == nil, omitEmpty: true},
		{key: "departments", value: depts, zero: c.Departments == nil},
	}, c.Extra)
}

// departmentKeys keeps the order departments were read in; others follow
// with the fixed columns first and the rest sorted by name.
func (c Config) departmentKeys() []string {
	keys := make([]string, 0, len(c.Departments))
	seen := make(map[string]bool, len(c.Departments))
	add := func(name string) {
		if _, ok := c.Departments[name]; ok && !seen[name] {
			seen[name] = true
			keys = append(keys, name)
		}
	}
	for _, name := range c.DepartmentOrder {
		add(name)
	}
	for _, col := range Columns {
		add(col.Name)
	}
	rest := make([]string, 0, len(c.Departments))
	for name := range c.Departments {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func (c Config) marshalDepartments() (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.departmentKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, name, c.Departments[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Config) UnmarshalJSON(data []byte) error {
	keys, values, err := decodeObject(data)
	if err != nil {
		return err
	}

	var out Config
	if raw, ok := values["admin_password"]; ok {
		if err := json.Unmarshal(raw, &out.AdminPassword); err != nil {
			return fmt.Errorf("admin_password: %w", err)
		}
	}
	if raw, ok := values["departments"]; ok && !isNull(raw) {
		order, depts, err := decodeObject(raw)
		if err != nil {
			return fmt.Errorf("departments: %w", err)
		}
		out.Departments = make(map[string]*Department, len(depts))
		for _, name := range order {
			var d *Department
			if err := json.Unmarshal(depts[name], &d); err != nil {
				return fmt.Errorf("department %s: %w", name, err)
			}
			out.Departments[name] = d
		}
		if !slices.Equal(order, out.departmentKeys()) {
			out.DepartmentOrder = order
		}
	}
	out.Extra = splitExtra(keys, values, "admin_password", "departments")

	*c = out
	return nil
}

func (d Department) MarshalJSON() ([]byte, error) {
	return marshalObject([]field{
		{key: "icon", value: d.Icon, zero: d.Icon == ""},
		{key: "theme", value: d.Theme, zero: d.Theme == ""},
		{key: "protected", value: d.Protected, zero: !d.Protected},
		{key: "links", value: d.Links, zero: d.Links == nil},
	}, d.Extra)
}

func (d *Department) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	keys, values, err := decodeObject(data)
	if err != nil {
		return err
	}

	var out Department
	targets := map[string]any{
		"icon":      &out.Icon,
		"theme":     &out.Theme,
		"protected": &out.Protected,
		"links":     &out.Links,
	}
	if err := decodeManaged(values, targets); err != nil {
		return err
	}
	out.Extra = splitExtra(keys, values, "icon", "theme", "protected", "links")

	*d = out
	return nil
}

func (l Link) MarshalJSON() ([]byte, error) {
	return marshalObject([]field{
		{key: "name", value: l.Name, zero: l.Name == ""},
		{key: "url", value: l.URL, zero: l.URL == ""},
		{key: "desc", value: l.Desc, zero: l.Desc == ""},
	}, l.Extra)
}

func (l *Link) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	keys, values, err := decodeObject(data)
	if err != nil {
		return err
	}

	var out Link
	targets := map[string]any{
		"name": &out.Name,
		"url":  &out.URL,
		"desc": &out.Desc,
	}
	if err := decodeManaged(values, targets); err != nil {
		return err
	}
	out.Extra = splitExtra(keys, values, "name", "url", "desc")

	*l = out
	return nil
}

// marshalObject writes managed fields and unknown keys in the order they
// were read. Keys new to the object follow: managed ones in field order, then
// unknown ones sorted.
func marshalObject(fields []field, extra Extra) ([]byte, error) {
	managed := make(map[string]field, len(fields))
	for _, f := range fields {
		managed[f.key] = f
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	emit := func(key string, value any) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		return writeMember(&buf, key, value)
	}

	written := make(map[string]bool, len(fields)+len(extra.Unknown))
	for _, key := range extra.Order {
		if written[key] {
			continue
		}
		if f, ok := managed[key]; ok {
			written[key] = true
			if f.zero && f.omitEmpty {
				continue
			}
			if err := emit(key, f.value); err != nil {
				return nil, err
			}
			continue
		}
		if raw, ok := extra.Unknown[key]; ok {
			written[key] = true
			if err := emit(key, raw); err != nil {
				return nil, err
			}
		}
	}

	for _, f := range fields {
		if written[f.key] {
			continue
		}
		if f.zero && (f.omitEmpty || extra.absent(f.key)) {
			continue
		}
		if err := emit(f.key, f.value); err != nil {
			return nil, err
		}
	}

	rest := make([]string, 0, len(extra.Unknown))
	for key := range extra.Unknown {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := emit(key, extra.Unknown[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshalValue(key)
	if err != nil {
		return err
	}
	v, err := marshalValue(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshalValue encodes v leaving HTML characters literal.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeObject reads a JSON object, returning its keys in order and each
// value compacted. A repeated key keeps its last value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("expected a JSON object")
	}

	keys := []string{}
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = compact.Bytes()
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func decodeManaged(values map[string]json.RawMessage, targets map[string]any) error {
	for key, dst := range targets {
		raw, ok := values[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// splitExtra keeps the key order and every value whose key is not managed.
// An object holding exactly the managed keys in their usual order needs
// neither, and yields a zero Extra.
func splitExtra(keys []string, values map[string]json.RawMessage, managed ...string) Extra {
	if slices.Equal(keys, managed) {
		return Extra{}
	}
	extra := Extra{Order: keys}
	for _, key := range keys {
		if slices.Contains(managed, key) {
			continue
		}
		if extra.Unknown == nil {
			extra.Unknown = make(map[string]json.RawMessage)
		}
		extra.Unknown[key] = values[key]
	}
	return extra
}

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}
