package dbm

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CacheConfig describes whether and how caching applies to one fetch call.
// The zero value disables caching entirely.
//
// Two addressing modes exist and must not be mixed in one call: single-key
// mode (Key, optionally VersionKey) used by FetchOne, FetchScalar and
// FetchList, and per-identifier mode (Prefix, ByColumn and friends) used by
// FetchKeyed. Configs are validated at call time; an invalid config fails
// the call before anything runs.
type CacheConfig struct {
	// Enabled turns caching on for this call. When false the call always
	// hits the database and the addressing fields are ignored.
	Enabled bool

	// TTL is the lifetime of entries written by this call. Cache writes
	// only happen when TTL is positive.
	TTL time.Duration

	// Renew skips cache reads but still rebuilds entries, forcing fresh
	// data into the cache.
	Renew bool

	// Key is the cache key for single-key mode.
	Key string

	// VersionKey names a shared token entry. When set, the token value is
	// appended to Key so rotating the token retargets every key derived
	// from it at once. Requires a positive TTL.
	VersionKey string

	// Prefix is the per-identifier mode key prefix; the derived key for an
	// identifier is the prefix immediately followed by the identifier's
	// canonical string. No separator is inserted and no hashing is applied.
	Prefix string

	// ByColumn is the column whose values key cache entries in
	// per-identifier mode, and the column the appended IN filter restricts
	// unless ByColumnSQL overrides it. The value "id" implies NumericKeys.
	ByColumn string

	// ByColumnSQL, when set, replaces ByColumn as the column text used in
	// the generated WHERE clause.
	ByColumnSQL string

	// GroupColumns switches per-identifier mode to grouped caching: rows
	// sharing a ByColumn value are cached as one group, each unit projected
	// to these columns.
	GroupColumns []string

	// GroupValue collapses each projected unit to the bare value of the
	// first GroupColumns entry present in the row.
	GroupValue bool

	// NumericKeys forces numeric validation of identifiers. Identifiers
	// failing the check are dropped from the call entirely: from cache key
	// derivation and from the backing filter alike.
	NumericKeys bool

	// IndexBy re-keys returned mappings by the named column after fetching.
	// It never changes what is cached. Grouped results are already keyed by
	// ByColumn and ignore it.
	IndexBy string
}

// validateSingle checks the configuration for the single-key fetch paths.
func (c CacheConfig) validateSingle() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Key,
			validation.Required.Error("required when caching is enabled")),
		validation.Field(&c.TTL,
			validation.Min(time.Duration(0)),
			validation.Required.When(c.VersionKey != "").Error("required when a version key is set")),
		validation.Field(&c.Prefix,
			validation.Empty.Error("per-identifier option is not valid in single-key mode")),
		validation.Field(&c.ByColumn,
			validation.Empty.Error("per-identifier option is not valid in single-key mode")),
		validation.Field(&c.ByColumnSQL,
			validation.Empty.Error("per-identifier option is not valid in single-key mode")),
		validation.Field(&c.GroupColumns,
			validation.Empty.Error("per-identifier option is not valid in single-key mode")),
	)
}

// validateKeyed checks the configuration for the per-identifier fetch path.
// ByColumn is needed even when caching is off, since result shaping keys off
// it either way.
func (c CacheConfig) validateKeyed() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ByColumn,
			validation.Required.Error("required in per-identifier mode")),
		validation.Field(&c.Prefix,
			validation.Required.When(c.Enabled).Error("required when caching is enabled")),
		validation.Field(&c.TTL,
			validation.Min(time.Duration(0))),
		validation.Field(&c.Key,
			validation.Empty.Error("single-key option is not valid in per-identifier mode")),
		validation.Field(&c.VersionKey,
			validation.Empty.Error("single-key option is not valid in per-identifier mode")),
		validation.Field(&c.GroupColumns,
			validation.Required.When(c.GroupValue).Error("required when GroupValue is set")),
	)
}
