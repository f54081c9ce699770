package model

import "time"

// EndpointPolicy maps a canonical route and HTTP verb to the role names
// allowed to call it. At most one active (non-disabled) policy may exist per
// (route, verb) pair; role names are stored uppercased.
type EndpointPolicy struct {
	ID         string     `json:"id"`
	Route      string     `json:"route"`
	Verb       string     `json:"verb"`
	Roles      []string   `json:"roles"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
}
