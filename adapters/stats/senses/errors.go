package senses

import "fhtsuite/domain/core"

func lengthMismatch(x, y int) error {
	return core.NewLengthMismatchError(x, y)
}

func insufficientData(sense string, n int) error {
	return core.NewInsufficientDataError(sense, n, MinSampleSize)
}
