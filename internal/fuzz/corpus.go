package fuzz

import "strings"

// EvilStrings is the input corpus used by boundary abuse.
var EvilStrings = []string{
	"",
	"   ",
	"\t\n\r",
	strings.Repeat("A", 1000),
	strings.Repeat("A", 10000),
	"<script>alert('xss')</script>",
	"<img src=x onerror=alert(1)>",
	"'; DROP TABLE users; --",
	"' OR '1'='1",
	"admin'--",
	"../../../../etc/passwd",
	"..\\..\\..\\windows\\win.ini",
	"{{7*7}}",
	"${7*7}",
	"%s%s%s%n",
	"\x00",
	"null\x00byte",
	"😀🔥💥👨‍👩‍👧",
	"\u202Egnp.exe",
	"line1\r\nSet-Cookie: gremlin=1",
	"-1",
	"99999999999999999999999",
	"NaN",
	"undefined",
	"null",
	"Ω≈ç√∫˜µ≤≥÷",
}
