package testutil

// WithEbin adds small stand-ins for the ebin plugins:
//
//	ebin/echo   prints its arguments on one line
//	ebin/args   prints each argument on its own line
//	ebin/upper  upper-cases stdin
//	ebin/who    prefixes every stdin line with "who:"
//	ebin/pwd    prints its working directory
//	ebin/fail   exits with the code given as first argument (default 3)
//	ebin/noexec a file without execute permission
func (b *Builder) WithEbin() *Builder {
	return b.
		WithScript("ebin/echo", `printf '%s\n' "$*"`).
		WithScript("ebin/args", `for a in "$@"; do printf '%s\n' "$a"; done`).
		WithScript("ebin/upper", `tr '[:lower:]' '[:upper:]'`).
		WithScript("ebin/who", `while IFS= read -r line; do printf 'who:%s\n' "$line"; done`).
		WithScript("ebin/pwd", `pwd`).
		WithScript("ebin/fail", `exit "${1:-3}"`).
		WithFile("ebin/noexec", "#!/bin/sh\necho never\n", 0o644)
}

// StandardCatalog mirrors the built-in catalog with ebin programs that
// WithEbin provides.
func StandardCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: "echo", Cmd: "ebin/echo", Description: "Echo the arguments"},
		{Name: "args", Cmd: "ebin/args", Description: "Print each argument on its own line"},
		{Name: "pwd", Cmd: "ebin/pwd", Description: "Print the working directory", Tags: []string{"linux"}},
		{Name: "who", Cmd: "printf 'alice\\nbob\\n' | ebin/who", Description: "Prefix logged in users", Tags: []string{"linux"}},
	}
}
