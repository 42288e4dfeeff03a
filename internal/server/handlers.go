package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/chart"
	"github.com/jgoulah/hashfuture/internal/projector"
	"github.com/jgoulah/hashfuture/internal/render"
	"github.com/jgoulah/hashfuture/internal/session"
	"github.com/jgoulah/hashfuture/internal/upload"
	"github.com/jgoulah/hashfuture/pkg/models"
)

// multipart framing allowance on top of the file itself
const formOverhead = 64 << 10

type projectionResponse struct {
	*models.Projection
	Text string `json:"text"`
}

func newProjectionResponse(p *models.Projection) projectionResponse {
	return projectionResponse{Projection: p, Text: render.Text(p)}
}

func (s *Server) uploadReport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+formOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(c, http.StatusRequestEntityTooLarge, upload.UserMessage(upload.ErrTooLarge))
			return
		}
		respondError(c, http.StatusBadRequest, "missing form file \"file\"")
		return
	}

	if err := upload.CheckDeclared(header.Header.Get("Content-Type"), header.Size, s.maxUpload); err != nil {
		respondValidation(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}
	if err := upload.CheckContent(data, s.maxUpload); err != nil {
		respondValidation(c, err)
		return
	}

	res, err := s.analyzer.Analyze(c.Request.Context(), data, s.products)
	if err != nil {
		respondAnalysis(c, err)
		return
	}

	if err := s.store.Put(userKey(c), data); err != nil {
		logrus.WithError(err).Error("Failed to store report")
		respondError(c, http.StatusInternalServerError, "storing report failed")
		return
	}

	out := make([]projectionResponse, 0, len(res.Projections))
	for _, p := range res.Projections {
		out = append(out, newProjectionResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":     len(res.Log.Entries),
		"projections": out,
	})
}

func (s *Server) deleteReport(c *gin.Context) {
	s.store.Delete(userKey(c))
	c.Status(http.StatusNoContent)
}

func (s *Server) future(c *gin.Context) {
	product, ok := s.productParam(c)
	if !ok {
		return
	}
	res, ok := s.analyzeStored(c, product)
	if !ok {
		return
	}
	p, _ := res.Projection(product)
	c.JSON(http.StatusOK, newProjectionResponse(p))
}

func (s *Server) chart(c *gin.Context) {
	product, ok := s.productParam(c)
	if !ok {
		return
	}
	res, ok := s.analyzeStored(c, product)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := chart.RenderPNG(&buf, product, projector.Timeline(res.Log, product), chart.DefaultWidth, chart.DefaultHeight)
	if errors.Is(err, chart.ErrNoData) {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to render chart")
		respondError(c, http.StatusInternalServerError, "rendering chart failed")
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) productParam(c *gin.Context) (models.Product, bool) {
	name := c.DefaultQuery("product", string(models.SHA256))
	product, ok := models.ParseProduct(name)
	if !ok {
		respondError(c, http.StatusBadRequest, "unknown product: "+name)
	}
	return product, ok
}

func (s *Server) analyzeStored(c *gin.Context, product models.Product) (*analyzer.Result, bool) {
	data, err := s.store.Get(userKey(c))
	if errors.Is(err, session.ErrNoReport) {
		respondError(c, http.StatusNotFound, "no report uploaded yet")
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to load report")
		respondError(c, http.StatusInternalServerError, "loading report failed")
		return nil, false
	}

	res, err := s.analyzer.Analyze(c.Request.Context(), data, []models.Product{product})
	if err != nil {
		respondAnalysis(c, err)
		return nil, false
	}
	return res, true
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondValidation(c *gin.Context, err error) {
	status := http.StatusUnsupportedMediaType
	if errors.Is(err, upload.ErrTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	respondError(c, status, upload.UserMessage(err))
}

func respondAnalysis(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	var stepErr *analyzer.StepError
	if errors.As(err, &stepErr) && stepErr.Step == analyzer.StepRates {
		status = http.StatusBadGateway
	}
	logrus.WithError(err).WithField("user", userKey(c)).Warn("Analysis failed")
	respondError(c, status, err.Error())
}
