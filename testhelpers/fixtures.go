package testhelpers

import "strings"

// Python sources shared across package tests
var Python = struct {
	// Clean has lowercase functions, docstrings and no long lines
	Clean string
	// Messy has a CamelCase method, an uppercase variable, missing docstrings and a long line
	Messy string
	// Invalid does not parse
	Invalid string
	// Repeated has lines 1 and 3 identical
	Repeated string
	// Async holds only an async function, which no check inspects
	Async string
}{
	Clean: `"""Utilities."""


def add(a, b):
    """Return the sum."""
    return a + b
`,
	Messy: "class Widget:\n" +
		"    def Render(self):\n" +
		"        return 1\n" +
		"\n" +
		"def process():\n" +
		"    LIMIT = 10\n" +
		"    return LIMIT + 1\n" +
		"\n" +
		"banner = \"" + strings.Repeat("=", 80) + "\"\n",
	Invalid: "def broken(:\n    pass\n",
	Repeated: `count = 0
total = 1
count = 0
`,
	Async: `async def Fetch(url):
    return url
`,
}
