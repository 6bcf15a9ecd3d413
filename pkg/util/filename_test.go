package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"My cool movie.mov":     "My_cool_movie.mov",
		"../../../etc/passwd":   "etc_passwd",
		`..\..\windows\win.ini`: "windows_win.ini",
		"über straße.jpg":       "uber_strae.jpg",
		"photo (1).png":         "photo_1.png",
		"  .hidden ":            "hidden",
		"con.txt":               "_con.txt",
		"../..":                 "",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SecureFilename(in), "input %q", in)
	}
}
