// Package csvfile reads Record Tables from and writes them to delimited text files.
package csvfile

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithComma sets the field delimiter.
func WithComma(comma rune) Option {
	return func(s *Store) {
		if comma != 0 && comma != '\n' && comma != '\r' && comma != '"' {
			s.comma = comma
		}
	}
}

// WithCreateDirs makes WriteTable create missing parent directories.
func WithCreateDirs(create bool) Option {
	return func(s *Store) {
		s.createDirs = create
	}
}
