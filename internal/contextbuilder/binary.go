package contextbuilder

import (
	"os"
	"path/filepath"
	"strings"
)

// binaryExtensions are file suffixes classified as binary without reading
// the file.
var binaryExtensions = map[string]bool{
	".pkl": true, ".pickle": true, ".parquet": true, ".h5": true, ".hdf5": true,
	".npy": true, ".npz": true,
	".bin": true, ".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".o": true, ".obj": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true,
	".db": true, ".sqlite": true, ".sqlite3": true, ".mdb": true,
	".pyc": true, ".pyo": true, ".pyd": true, ".class": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".jar": true, ".war": true, ".ear": true,
}

// IsBinary classifies a file as binary by extension first, then by sniffing
// the first 512 bytes: a NUL byte, or more than 30% non-printable control
// characters (tab/newline/carriage-return excluded), marks it binary.
func IsBinary(path string) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if n == 0 {
		return false
	}

	nonPrintable := 0
	for _, c := range buf[:n] {
		if c == 0 {
			return true
		}
		if c < 32 && c != '\t' && c != '\n' && c != '\r' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(n) > 0.3
}
