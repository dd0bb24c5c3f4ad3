package models

// LangMap carries a translated string per supported catalog language.
// Fixed fields keep serialized output byte-stable across runs.
type LangMap struct {
	SE string `json:"se"`
	EN string `json:"en"`
	PL string `json:"pl"`
}

// Lang builds a LangMap from the per-language columns, treating nil
// Polish values as empty.
func Lang(sv, en string, pl *string) LangMap {
	m := LangMap{SE: sv, EN: en}
	if pl != nil {
		m.PL = *pl
	}
	return m
}
