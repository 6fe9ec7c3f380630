package main

// #include "pasteclean.h"
import "C"

// === Processors ===

// pasteclean_processor_new creates a processor from a JSON config and
// returns its handle, or -1 when the config is invalid. A NULL config uses
// the defaults.
//
//export pasteclean_processor_new
func pasteclean_processor_new(configJSON *C.char) C.int {
	var raw string
	if configJSON != nil {
		raw = C.GoString(configJSON)
	}
	id, err := processors.open(raw)
	if err != nil {
		return -1
	}
	return C.int(id)
}

// pasteclean_processor_process sanitizes html in mode ("rich" or "text")
// and returns the result as JSON: content, mode, stats and warnings.
//
//export pasteclean_processor_process
func pasteclean_processor_process(handle C.int, html *C.char, mode *C.char) C.PastecleanResult {
	data, err := processors.process(int32(handle), C.GoString(html), C.GoString(mode))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(data)
}

//export pasteclean_processor_free
func pasteclean_processor_free(handle C.int) {
	processors.remove(int32(handle))
}
