package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"fhtsuite/domain/core"
)

func TestGetCode_DomainSentinels(t *testing.T) {
	cases := map[string]error{
		CodeConfigInvalid:    core.NewConfigError("epsilon", "must be positive"),
		CodeInvalidInput:     core.NewLengthMismatchError(3, 4),
		CodeInsufficientData: core.NewInsufficientDataError("validate", 1, 2),
		CodeGenerationFailed: core.NewGenerationError("zigzag", 10, core.ErrUnknownPattern),
		CodeNotFound:         fmt.Errorf("lookup: %w", core.ErrRunNotFound),
		CodeInternalError:    stderrors.New("boom"),
	}
	for code, err := range cases {
		assert.Equal(t, code, GetCode(err), err.Error())
	}
}

func TestWrap_KeepsCodeAndChain(t *testing.T) {
	err := Wrap(core.NewInsufficientDataError("validate", 1, 2), "validating dataset")

	assert.Equal(t, CodeInsufficientData, GetCode(err))
	assert.ErrorIs(t, err, core.ErrInsufficientData)
	assert.Contains(t, err.Error(), "validating dataset")
	assert.Nil(t, Wrap(nil, "ignored"))

	outer := Wrapf(DatabaseError("insert failed", stderrors.New("locked")), "saving run %s", "abc")
	assert.Equal(t, CodeDatabaseError, GetCode(outer))
	assert.True(t, IsAppError(outer))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeExportError, stderrors.New("disk full"))
	assert.Equal(t, CodeExportError, GetCode(err))
	assert.Equal(t, "disk full: disk full", err.Error())
	assert.Nil(t, WithCode(CodeExportError, nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("bad body")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(core.NewInsufficientDataError("validate", 0, 2)))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(core.NewGenerationError("x", 1, core.ErrUnknownPattern)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("run")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(DatabaseError("down", nil)))
}
