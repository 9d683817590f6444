package discret

import "fmt"

// ParameterList is a hierarchical bag of named parameters
type ParameterList struct {
	Name     string
	values   map[string]interface{}
	sublists map[string]*ParameterList
}

func NewParameterList(name string) *ParameterList {
	return &ParameterList{
		Name:     name,
		values:   make(map[string]interface{}),
		sublists: make(map[string]*ParameterList),
	}
}

func (pl *ParameterList) Set(key string, v interface{}) *ParameterList {
	pl.values[key] = v
	return pl
}

func (pl *ParameterList) Has(key string) (ok bool) {
	_, ok = pl.values[key]
	return
}

// Sublist returns the named sublist, creating it when missing
func (pl *ParameterList) Sublist(name string) (sub *ParameterList) {
	var ok bool
	if sub, ok = pl.sublists[name]; !ok {
		sub = NewParameterList(pl.Name + "/" + name)
		pl.sublists[name] = sub
	}
	return
}

func (pl *ParameterList) HasSublist(name string) (ok bool) {
	_, ok = pl.sublists[name]
	return
}

// Get returns the typed value of key
func Get[T any](pl *ParameterList, key string) (v T, err error) {
	raw, ok := pl.values[key]
	if !ok {
		err = fmt.Errorf("parameter %q not found in %q", key, pl.Name)
		return
	}
	if v, ok = raw.(T); !ok {
		err = fmt.Errorf("parameter %q in %q has type %T, requested %T", key, pl.Name, raw, v)
	}
	return
}

// GetOr returns the typed value of key or def when it is missing or of another type
func GetOr[T any](pl *ParameterList, key string, def T) T {
	if pl == nil {
		return def
	}
	if v, err := Get[T](pl, key); err == nil {
		return v
	}
	return def
}

// Clone copies the list and all sublists. Values are copied by assignment,
// so pointer values stay shared with the original.
func (pl *ParameterList) Clone() (c *ParameterList) {
	c = NewParameterList(pl.Name)
	for k, v := range pl.values {
		c.values[k] = v
	}
	for k, sub := range pl.sublists {
		c.sublists[k] = sub.Clone()
	}
	return
}
