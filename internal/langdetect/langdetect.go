// Package langdetect classifies free-text programming answers by scanning for
// syntactic fingerprints. The result only tags the submission payload for
// backend routing; it is never authoritative and an Unknown result must not
// block submission.
package langdetect

import "strings"

type Language string

const (
	Java    Language = "JAVA"
	Python  Language = "PYTHON"
	CPP     Language = "CPP"
	C       Language = "C"
	Unknown Language = ""
)

// Detect returns the best-effort language tag for a code snippet. Rules are
// checked in fixed order; the first match wins. Different answers in one
// submission may detect as different languages.
func Detect(code string) Language {
	switch {
	case isJava(code):
		return Java
	case isPython(code):
		return Python
	case isCPP(code):
		return CPP
	case isC(code):
		return C
	default:
		return Unknown
	}
}

func isJava(code string) bool {
	return strings.Contains(code, "public class") ||
		strings.Contains(code, "System.out.println") ||
		strings.Contains(code, "import java")
}

// Python answers must not carry a C-style include; "import" alone is shared
// with Java but Java is checked first.
func isPython(code string) bool {
	if strings.Contains(code, "#include") {
		return false
	}
	return strings.Contains(code, "print(") ||
		strings.Contains(code, "def ") ||
		strings.Contains(code, "import ")
}

func isCPP(code string) bool {
	if !strings.Contains(code, "#include") {
		return false
	}
	return strings.Contains(code, "iostream") ||
		strings.Contains(code, "vector") ||
		strings.Contains(code, "string>")
}

func isC(code string) bool {
	if !strings.Contains(code, "#include") {
		return false
	}
	return strings.Contains(code, "stdio.h") ||
		strings.Contains(code, "printf") ||
		strings.Contains(code, "scanf")
}
