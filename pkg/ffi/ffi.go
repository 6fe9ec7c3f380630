// Package main provides C exports of the paste sanitizer for editor hosts
// that embed it from another language.
//
// Build with:
//
//	CGO_ENABLED=1 go build -buildmode=c-shared -o libpasteclean.so ./pkg/ffi/
//
// All inputs/outputs are C strings. Structured data is JSON-serialized.
// The PastecleanResult type provides both data and error fields.
// Callers must free results with pasteclean_result_free.
package main

// #include "pasteclean.h"
import "C"
import (
	"unsafe"

	"github.com/jmylchreest/pasteclean/pkg/paste"
)

// === Sanitize ===

//export pasteclean_sanitize_rich
func pasteclean_sanitize_rich(html *C.char) C.PastecleanResult {
	return makeResult(paste.SanitizeForRichPaste(C.GoString(html)))
}

//export pasteclean_sanitize_plain
func pasteclean_sanitize_plain(html *C.char) C.PastecleanResult {
	return makeResult(paste.SanitizeForPlainPaste(C.GoString(html)))
}

// === Memory Management ===

//export pasteclean_result_free
func pasteclean_result_free(result C.PastecleanResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// helpers

func makeResult(data string) C.PastecleanResult {
	cData := C.CString(data)
	return C.PastecleanResult{
		data:  cData,
		len:   C.int(len(data)),
		error: nil,
	}
}

func makeError(msg string) C.PastecleanResult {
	cErr := C.CString(msg)
	return C.PastecleanResult{
		data:  nil,
		len:   0,
		error: cErr,
	}
}
