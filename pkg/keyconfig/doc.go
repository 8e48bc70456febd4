// Package keyconfig binds struct fields to entries of a key/value
// configuration source, in both directions.
//
// Fields take part in binding through the keyconfig struct tag:
//
//	type Settings struct {
//		Name       string        `keyconfig:"IpAddress,required"`
//		Occupation string        `keyconfig:""`
//		Port       int           `keyconfig:"" default:"8080"`
//		Timeout    time.Duration `keyconfig:"RequestTimeout" default:"30s"`
//		internal   string        // no tag, not bound
//	}
//
// An empty key binds the field under its Go name. The required option turns
// an absent value into an error; the default tag supplies the value used when
// a non-required key is absent. Without a default tag the field receives the
// zero value of its type.
//
// # Sources
//
// Any type implementing [Source] can be bound. The source decides which Go
// types it can store ([Source.CanHandle]) and whether it can be written
// ([Source.CanSet]). Ready-made sources live under pkg/source.
//
// # Operations
//
//	cfg, err := keyconfig.Load[Settings](src)      // new instance
//	err = keyconfig.Fulfill(src, cfg)              // existing instance
//	err = keyconfig.Save(src, cfg)                 // write back
//	ok, err := keyconfig.CheckRequired[Settings](src)
//
// Every operation walks the fields in declaration order and stops at the
// first failure. Failures tied to a field are returned as [*FieldError] and
// match one of the package sentinel errors:
//
//	if errors.Is(err, keyconfig.ErrMissingRequired) {
//		var fe *keyconfig.FieldError
//		errors.As(err, &fe)
//		fmt.Println("missing", fe.Key)
//	}
//
// # Required values
//
// A required field is missing when the source has no value for it, holds
// nil, or, for text fields, holds the empty string. Load, CheckRequired and
// Save apply the same rule, so an instance that loads also saves. On save
// and in CheckRequired only fields whose type can represent absence are
// checked: pointers, slices, maps, interfaces and strings. Numeric, boolean
// and time fields are never reported missing by those two operations.
//
// Optional fields keep a stored empty string; only a key the source lacks
// receives the default.
//
// # Concurrency
//
// Tag interpretation is cached per type and safe for concurrent use. The
// engine holds no other state; serializing access to a shared source or
// instance is the caller's job.
package keyconfig
