package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
	"github.com/mo-amir99/coursetrack-server-go/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "90", want: 90},
		{in: "1:30", want: 90},
		{in: "00:08:20", want: 500},
		{in: " 01:02:03 ", want: 3723},
		{in: "", wantErr: true},
		{in: "1:60", wantErr: true},
		{in: "1:00:60", wantErr: true},
		{in: "1::2", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "596523:14:07", want: MaxInt},
		{in: "596523:14:08", wantErr: true},
		{in: "2147483648", wantErr: true},
		{in: "6000000000000000:00:00", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadHelpers(t *testing.T) {
	n, err := ReadInt(float64(42))
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = ReadInt(1.5)
	assert.ErrorIs(t, err, ErrNotInteger)

	_, err = ReadInt("42")
	assert.ErrorIs(t, err, ErrNotInteger)

	_, err = ReadNonNegativeInt(float64(-1))
	assert.ErrorIs(t, err, ErrNegative)

	largest, err := ReadNonNegativeInt(float64(MaxInt))
	require.NoError(t, err)
	assert.Equal(t, MaxInt, largest)

	_, err = ReadNonNegativeInt(3e9)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ReadInt(float64(-3e9))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ReadInt(json.Number("99999999999999999999"))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ReadDuration(float64(3e9))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	zero, err := ReadNonNegativeInt(float64(0))
	require.NoError(t, err)
	assert.Zero(t, zero)

	seconds, err := ReadDuration("00:02:00")
	require.NoError(t, err)
	assert.Equal(t, 120, seconds)

	seconds, err = ReadDuration(json.Number("300"))
	require.NoError(t, err)
	assert.Equal(t, 300, seconds)

	_, err = ReadDuration(true)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	title, err := ReadString("  Intro ")
	require.NoError(t, err)
	assert.Equal(t, "Intro", title)

	_, err = ReadString("   ")
	assert.Error(t, err)
	_, err = ReadString(float64(3))
	assert.Error(t, err)
}

func TestSecondsUnmarshal(t *testing.T) {
	var payload struct {
		Duration Seconds `json:"duration"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"duration": 500}`), &payload))
	assert.Equal(t, Seconds(500), payload.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"duration": "00:01:30"}`), &payload))
	assert.Equal(t, Seconds(90), payload.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"duration": null}`), &payload))
	assert.Equal(t, Seconds(0), payload.Duration)

	err := json.Unmarshal([]byte(`{"duration": 1.5}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	err = json.Unmarshal([]byte(`{"duration": "soon"}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	err = json.Unmarshal([]byte(`{"duration": 3000000000}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestIsVideoURL(t *testing.T) {
	assert.True(t, IsVideoURL("https://cdn.example.com/intro.mp4"))
	assert.True(t, IsVideoURL("HTTP://example.com/v"))
	assert.False(t, IsVideoURL("ftp://example.com/v"))
	assert.False(t, IsVideoURL("/videos/intro.mp4"))
	assert.False(t, IsVideoURL("https://"))
	assert.False(t, IsVideoURL("not a url"))
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req struct {
			VideoLink string `json:"video_link" binding:"required,video_url"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{
		`{"video_link":"https://example.com/a.mp4"}`: http.StatusOK,
		`{"video_link":"example.com/a.mp4"}`:         http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, body)
	}
}

func TestHandler(t *testing.T) {
	router := gin.New()
	router.Use(Handler(logger.Discard()))
	router.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("Lesson not found.", nil))
	})
	router.GET("/duplicate", func(c *gin.Context) {
		_ = c.Error(gorm.ErrDuplicatedKey)
	})
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(gorm.ErrRecordNotFound)
	})
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset"))
	})
	router.GET("/written", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
		c.Writer.WriteHeaderNow()
		_ = c.Error(errors.New("late"))
	})

	cases := []struct {
		path    string
		status  int
		message string
		code    apperrors.ErrorCode
	}{
		{"/app", http.StatusNotFound, "Lesson not found.", apperrors.ErrNotFound},
		{"/duplicate", http.StatusConflict, "Resource already exists", apperrors.ErrConflict},
		{"/missing", http.StatusNotFound, "Resource not found", apperrors.ErrNotFound},
		{"/boom", http.StatusInternalServerError, "Internal server error", apperrors.ErrInternal},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			require.Equal(t, tc.status, rec.Code)
			var body response.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.message, body.Message)
			assert.Equal(t, map[string]interface{}{"code": string(tc.code)}, body.Error)
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}
