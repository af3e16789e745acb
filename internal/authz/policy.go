// Package authz gates operations on the caller's role. Denial is always
// distinct from a missing identity: handlers map a failed policy check to
// 403, never 401.
package authz

import "bankisha/internal/domain"

// Policy is a static set of permitted roles. The zero value permits any
// authenticated caller.
type Policy struct {
	roles map[domain.UserRole]struct{}
}

// Require builds a policy permitting only the given roles.
func Require(roles ...domain.UserRole) Policy {
	set := make(map[domain.UserRole]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return Policy{roles: set}
}

// AllowAll permits any authenticated caller.
func AllowAll() Policy {
	return Policy{}
}

// Permits reports whether the role satisfies the policy.
func (p Policy) Permits(role domain.UserRole) bool {
	if len(p.roles) == 0 {
		return true
	}
	_, ok := p.roles[role]
	return ok
}

// KeyPolicy is a per-key allow-list: keys without an entry are open to any
// authenticated caller, restricted keys require one of the listed roles.
type KeyPolicy struct {
	restricted map[string]Policy
}

// NewKeyPolicy builds an empty key policy.
func NewKeyPolicy() *KeyPolicy {
	return &KeyPolicy{restricted: make(map[string]Policy)}
}

// Restrict limits a key to the given roles.
func (k *KeyPolicy) Restrict(key string, roles ...domain.UserRole) *KeyPolicy {
	k.restricted[key] = Require(roles...)
	return k
}

// Permits reports whether the role may access the key.
func (k *KeyPolicy) Permits(key string, role domain.UserRole) bool {
	policy, ok := k.restricted[key]
	if !ok {
		return true
	}
	return policy.Permits(role)
}
