package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SecureFilename reduces a client supplied file name to a flat name made of
// ASCII letters, digits, '_', '.' and '-'. Path separators become word breaks,
// so "../../etc/passwd" turns into "etc_passwd". The result may be empty.
func SecureFilename(name string) string {
	var ascii strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			ascii.WriteRune(r)
		}
	}
	flat := strings.NewReplacer("/", " ", "\\", " ").Replace(ascii.String())

	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(flat), "_") {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "._")
	if out != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(out, ".", 2)[0])] {
		out = "_" + out
	}
	return out
}
