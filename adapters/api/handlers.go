package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"fhtsuite/adapters/export"
	"fhtsuite/internal/errors"
)

const jsonContentType = "application/json; charset=utf-8"

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTransform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	engine, err := s.service.Engine(req.Parameters.Resolve())
	if err != nil {
		s.respondError(c, err)
		return
	}
	amplification := req.Amplification
	if amplification == 0 {
		amplification = 1.0
	}

	c.JSON(http.StatusOK, TransformResponse{
		Transformed: engine.TransformAmplified(req.Data, amplification),
		Parameters:  engine.Parameters(),
	})
}

func (s *Server) handleScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	transformed, scores, err := s.service.Score(req.Parameters.Resolve(), req.Data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScoreResponse{Transformed: transformed, Metrics: scores})
}

// handleValidate accepts any JSON document; the dataset is read from the
// gjson path in ?path= (default "data") and optional parameters from "parameters".
func (s *Server) handleValidate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.respondError(c, errors.InvalidInput("failed to read request body"))
		return
	}

	path := c.DefaultQuery("path", "data")
	data, err := export.ParseJSON(body, path)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var override *ParametersRequest
	if raw := gjson.GetBytes(body, "parameters"); raw.IsObject() {
		override = &ParametersRequest{}
		if err := json.Unmarshal([]byte(raw.Raw), override); err != nil {
			s.respondError(c, errors.InvalidInput("invalid parameters: "+err.Error()))
			return
		}
	}

	record, err := s.service.ValidateDataset(c.Request.Context(), override.Resolve(), data)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRecordJSON(&buf, *record); err != nil {
		s.respondError(c, errors.ExportError("failed to encode record", err))
		return
	}
	c.Data(http.StatusOK, jsonContentType, buf.Bytes())
}

func (s *Server) handleSuite(c *gin.Context) {
	var req SuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	outcome, err := s.service.RunSuite(c.Request.Context(), req.toApp())
	if outcome == nil {
		s.respondError(c, err)
		return
	}
	// the run finished; persistence or export problems are reported alongside it
	warning := ""
	if err != nil {
		s.logger.Warn("run %s finished with error: %v", outcome.Result.RunID, err)
		warning = err.Error()
	}
	var buf bytes.Buffer
	if err := export.WriteResultJSON(&buf, outcome.Result); err != nil {
		s.respondError(c, errors.ExportError("failed to encode result", err))
		return
	}
	c.JSON(http.StatusOK, SuiteResponse{
		Result:  json.RawMessage(buf.Bytes()),
		Report:  outcome.Report,
		Files:   outcome.Files,
		Warning: warning,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		s.respondError(c, errors.InvalidInput("limit must be an integer"))
		return
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	result, err := s.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteResultJSON(&buf, result); err != nil {
		s.respondError(c, errors.ExportError("failed to encode run", err))
		return
	}
	c.Data(http.StatusOK, jsonContentType, buf.Bytes())
}
