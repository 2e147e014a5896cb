package tools

import (
	"log"
	"time"
)

var isEnabled = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func LogOutput(val ...interface{}) {
	if isEnabled {
		log.Println(append([]interface{}{"[" + time.Now().Format("2006-01-02 15.04:05.000") + "]"}, val...)...)
	}
}
