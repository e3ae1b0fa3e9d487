package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"regionx/internal/processor/handler/mocks"
	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/middleware/auth"
)

type stubValidator struct{ account domain.AccountID }

func (v stubValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.JWTClaims{Account: v.account}, nil
}

type ProcessorHandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	processor *mocks.MockService
	router    chi.Router
	alice     domain.AccountID
	id        regionmodels.RegionID
}

func TestProcessorHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProcessorHandlerSuite))
}

func (s *ProcessorHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.processor = mocks.NewMockService(s.ctrl)
	s.alice = domain.AccountID{1}
	s.id = regionmodels.RegionID{Begin: 5, Core: 2, Mask: regionmodels.CompleteMask()}
	s.router = chi.NewRouter()
	New(s.processor, slog.New(slog.NewTextHandler(io.Discard, nil)), stubValidator{account: s.alice}).Register(s.router)
}

func (s *ProcessorHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ProcessorHandlerSuite) do(method, path, body string, signed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if signed {
		req.Header.Set("Authorization", "Bearer good")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ProcessorHandlerSuite) TestFulfill() {
	body := `{"region_id":"` + s.id.String() + `"}`

	s.Run("seller fulfills", func() {
		s.processor.EXPECT().FulfillOrder(gomock.Any(), s.alice, domain.OrderID(7), s.id).Return(nil)
		s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/orders/7/fulfill", body, true).Code)
	})

	s.Run("mismatched regions conflict", func() {
		s.processor.EXPECT().FulfillOrder(gomock.Any(), s.alice, domain.OrderID(7), s.id).Return(models.ErrRegionEndsTooSoon)
		rec := s.do(http.MethodPost, "/orders/7/fulfill", body, true)
		s.Equal(http.StatusConflict, rec.Code)
		s.Contains(rec.Body.String(), "region_ends_too_soon")
	})

	s.Run("unknown orders are 404", func() {
		s.processor.EXPECT().FulfillOrder(gomock.Any(), s.alice, domain.OrderID(8), s.id).Return(models.ErrUnknownOrder)
		s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/orders/8/fulfill", body, true).Code)
	})

	s.Run("bad region ids are 400", func() {
		s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/orders/7/fulfill", `{"region_id":"zz"}`, true).Code)
	})
}

func (s *ProcessorHandlerSuite) TestAssignments() {
	s.Run("assign retry is accepted", func() {
		s.processor.EXPECT().Assign(gomock.Any(), s.alice, s.id).Return(nil)
		s.Equal(http.StatusAccepted, s.do(http.MethodPost, "/assignments/"+s.id.String()+"/assign", "", true).Code)
	})

	s.Run("assign without a record is 404", func() {
		s.processor.EXPECT().Assign(gomock.Any(), s.alice, s.id).Return(models.ErrRegionAssignmentNotFound)
		s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/assignments/"+s.id.String()+"/assign", "", true).Code)
	})

	s.Run("get assignment", func() {
		s.processor.EXPECT().Assignment(gomock.Any(), s.id).Return(&models.Assignment{RegionID: s.id, ParaID: 2000, Sent: true}, nil)
		rec := s.do(http.MethodGet, "/assignments/"+s.id.String(), "", false)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"region_id":"`+s.id.String()+`","para_id":2000,"sent":true}`, rec.Body.String())
	})

	s.Run("pending list is not shadowed by the id route", func() {
		s.processor.EXPECT().PendingAssignments(gomock.Any()).Return(nil, nil)
		rec := s.do(http.MethodGet, "/assignments/pending", "", false)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"assignments":[]}`, rec.Body.String())
	})
}
