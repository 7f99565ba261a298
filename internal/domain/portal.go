package domain

import "sort"

// DefaultAdminPassword is used when the stored document has no admin_password key.
const DefaultAdminPassword = "0526"

// Config is the whole persisted portal document.
//
// JSON encoding is custom (see document.go): keys read from disk keep their
// order, unknown keys survive a rewrite and optional keys that were absent
// stay absent.
type Config struct {
	// AdminPassword is nil when the key is missing. An explicit "" is kept.
	AdminPassword *string                `json:"admin_password,omitempty" yaml:"admin_password"`
	Departments   map[string]*Department `json:"departments" yaml:"departments"`

	// DepartmentOrder is the order departments were read in.
	DepartmentOrder []string `json:"-" yaml:"-"`
	Extra           Extra    `json:"-" yaml:"-"`
}

// Department is a named group of links with a display theme and a protection flag.
type Department struct {
	Icon      string `json:"icon" yaml:"icon"`
	Theme     Theme  `json:"theme" yaml:"theme"`
	Protected bool   `json:"protected" yaml:"protected"`
	Links     []Link `json:"links" yaml:"links"`

	Extra Extra `json:"-" yaml:"-"`
}

// Link points to an external tool.
type Link struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Desc string `json:"desc" yaml:"desc"`

	Extra Extra `json:"-" yaml:"-"`
}

// IsBlank reports whether every managed field is empty.
func (l Link) IsBlank() bool {
	return l.Name == "" && l.URL == "" && l.Desc == ""
}

// StringPtr returns a pointer to s, for building a Config in code.
func StringPtr(s string) *string { return &s }

// Password returns the admin password, falling back to DefaultAdminPassword
// only when the document has no admin_password key.
func (c *Config) Password() string {
	if c == nil || c.AdminPassword == nil {
		return DefaultAdminPassword
	}
	return *c.AdminPassword
}

// Department looks up a department by name.
func (c *Config) Department(name string) (*Department, bool) {
	if c == nil || c.Departments == nil {
		return nil, false
	}
	d, ok := c.Departments[name]
	if !ok || d == nil {
		return nil, false
	}
	return d, true
}

// DepartmentNames lists the fixed columns that exist in c first, in column
// order, followed by every other department sorted by name.
func (c *Config) DepartmentNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Departments))
	fixed := make(map[string]bool, len(Columns))
	for _, col := range Columns {
		fixed[col.Name] = true
		if _, ok := c.Department(col.Name); ok {
			names = append(names, col.Name)
		}
	}

	var rest []string
	for name, d := range c.Departments {
		if d == nil || fixed[name] {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)

	return append(names, rest...)
}

// Clone returns a deep copy so sessions never share link slices.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		DepartmentOrder: cloneStrings(c.DepartmentOrder),
		Extra:           c.Extra.clone(),
	}
	if c.AdminPassword != nil {
		out.AdminPassword = StringPtr(*c.AdminPassword)
	}
	if c.Departments == nil {
		return out
	}
	out.Departments = make(map[string]*Department, len(c.Departments))
	for name, d := range c.Departments {
		if d == nil {
			continue
		}
		cp := *d
		cp.Extra = d.Extra.clone()
		if d.Links != nil {
			cp.Links = make([]Link, len(d.Links))
			for i, l := range d.Links {
				l.Extra = l.Extra.clone()
				cp.Links[i] = l
			}
		}
		out.Departments[name] = &cp
	}
	return out
}

// ReplaceLinks swaps the whole link list of one department.
func (c *Config) ReplaceLinks(name string, links []Link) error {
	d, ok := c.Department(name)
	if !ok {
		return &UnknownDepartmentError{Name: name}
	}
	d.Links = append(make([]Link, 0, len(links)), links...)
	return nil
}
