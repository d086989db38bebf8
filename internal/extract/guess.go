package extract

import "strings"

// Guess infers the header convention from the first header line of a
// stream. Lines that fit none of the known shapes are Unknown, so the
// barcode will be read from the sequence.
func Guess(line string) Format {
	if strings.Count(line, "#") == 1 &&
		strings.Count(strings.SplitN(line, "#", 2)[1], "/") == 1 {
		return Normal
	}
	if strings.Count(line, " ") == 1 {
		name, desc, _ := strings.Cut(line, " ")
		if strings.Count(desc, ":") == 3 {
			return X
		}
		if strings.Count(name, ":") == 7 {
			return UMI
		}
	}
	return Unknown
}
