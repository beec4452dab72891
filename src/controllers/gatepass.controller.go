package controllers

import (
	"campusgate/src/gatepass"
	"campusgate/src/lib"
	awslib "campusgate/src/lib/aws"
	"campusgate/src/middlewares"
	"campusgate/src/models"
	"campusgate/src/types"
	"campusgate/src/utils"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

const shareLinkTTL = 50 * time.Minute

var errUnauthenticated = errors.New("unauthorized")

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch gatepass.KindOf(err) {
	case gatepass.KindNotFound:
		return http.StatusNotFound
	case gatepass.KindForbidden:
		return http.StatusForbidden
	case gatepass.KindInvalidState:
		return http.StatusConflict
	case gatepass.KindValidation:
		return http.StatusBadRequest
	}
	if errors.Is(err, utils.ErrInvalidCode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorBody renders err for a JSON response. Internal errors are not
// echoed back.
func ErrorBody(err error) gin.H {
	var ge *gatepass.Error
	if errors.As(err, &ge) {
		body := gin.H{"error": ge.Error(), "kind": ge.Kind}
		if ge.Kind == gatepass.KindInvalidState {
			body["current_status"] = ge.Current
			body["expected_status"] = ge.Expected
		}
		return body
	}
	if StatusFor(err) == http.StatusInternalServerError {
		return gin.H{"error": "internal server error"}
	}
	return gin.H{"error": err.Error()}
}

func actorID(ctx *gin.Context) (uint, error) {
	p := middlewares.CurrentPerson(ctx)
	if p == nil {
		return 0, errUnauthenticated
	}
	return p.ID, nil
}

func CreateGatePass(ctx *gin.Context, svc *gatepass.Service) (*models.GatePass, int, error) {
	var body types.CreateGatePassRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	uid, err := actorID(ctx)
	if err != nil {
		return nil, http.StatusUnauthorized, err
	}
	start, err := utils.ParseTime(body.StartDate)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := utils.ParseTime(body.EndDate)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid end_date: %w", err)
	}
	gpType, _ := types.ParseGatePassType(body.Type)
	gp, err := svc.Create(ctx.Request.Context(), gatepass.CreateInput{
		RequesterID: uid,
		Type:        gpType,
		Reason:      body.Reason,
		Description: body.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return nil, StatusFor(err), err
	}
	return gp, http.StatusCreated, nil
}

// DecideGatePass applies the caller's decision at stage. The decision may
// be sent as "decision" or in the older "status" vocabulary.
func DecideGatePass(ctx *gin.Context, svc *gatepass.Service, stage gatepass.Stage) (*models.GatePass, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	uid, err := actorID(ctx)
	if err != nil {
		return nil, http.StatusUnauthorized, err
	}
	c := ctx.Request.Context()

	if stage == gatepass.StageSecurity {
		var body types.SecurityVerificationRequestBody
		if ctx.Request.ContentLength > 0 {
			if err := ctx.ShouldBindJSON(&body); err != nil {
				return nil, http.StatusBadRequest, err
			}
		}
		gp, err := svc.MarkUsedAsSecurity(c, params.ID, uid, body.Comment)
		if err != nil {
			return nil, StatusFor(err), err
		}
		return gp, http.StatusOK, nil
	}

	var body types.GatePassDecisionRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	raw := body.Decision
	if raw == "" {
		raw = body.Status
	}
	d, ok := types.ParseDecision(raw)
	if !ok {
		return nil, http.StatusBadRequest, fmt.Errorf("unknown decision %q", raw)
	}

	var gp *models.GatePass
	switch stage {
	case gatepass.StageStaff:
		gp, err = svc.DecideAsStaff(c, params.ID, uid, d, body.Comment)
	case gatepass.StageHod:
		gp, err = svc.DecideAsHod(c, params.ID, uid, d, body.Comment)
	case gatepass.StageHostelWarden:
		gp, err = svc.DecideAsHostelWarden(c, params.ID, uid, d, body.Comment)
	case gatepass.StageAcademicDirector:
		gp, err = svc.DecideAsAcademicDirector(c, params.ID, uid, d, body.Comment)
	default:
		return nil, http.StatusNotFound, fmt.Errorf("unknown stage %q", stage)
	}
	if err != nil {
		return nil, StatusFor(err), err
	}
	return gp, http.StatusOK, nil
}

func ListGatePasses(ctx *gin.Context, svc *gatepass.Service) ([]models.GatePass, int, error) {
	var query types.GatePassQueryFilters
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, http.StatusBadRequest, err
	}
	f := gatepass.Filter{
		RequesterID:   query.RequesterID,
		RequesterType: types.RequesterType(query.RequesterType),
		StudentID:     query.StudentID,
		DepartmentID:  query.DepartmentID,
	}
	if query.Status != "" {
		s, ok := types.ParseGatePassStatus(query.Status)
		if !ok {
			return nil, http.StatusBadRequest, fmt.Errorf("unknown status %q", query.Status)
		}
		f.Status = s
	}
	for _, b := range []struct {
		raw string
		dst **time.Time
	}{{query.From, &f.From}, {query.To, &f.To}} {
		if b.raw == "" {
			continue
		}
		t, err := utils.ParseTime(b.raw)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		*b.dst = &t
	}
	passes, err := svc.List(ctx.Request.Context(), f)
	if err != nil {
		return nil, StatusFor(err), err
	}
	return passes, http.StatusOK, nil
}

func MyGatePasses(ctx *gin.Context, svc *gatepass.Service) ([]models.GatePass, int, error) {
	var query types.MyRequestsQueryFilters
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, http.StatusBadRequest, err
	}
	uid, err := actorID(ctx)
	if err != nil {
		return nil, http.StatusUnauthorized, err
	}
	passes, err := svc.ListByRequester(ctx.Request.Context(), uid, types.RequesterType(query.RequesterType))
	if err != nil {
		return nil, StatusFor(err), err
	}
	return passes, http.StatusOK, nil
}

func GetGatePass(ctx *gin.Context, svc *gatepass.Service) (*models.GatePass, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	uid, err := actorID(ctx)
	if err != nil {
		return nil, http.StatusUnauthorized, err
	}
	gp, err := svc.GetFor(ctx.Request.Context(), params.ID, uid)
	if err != nil {
		return nil, StatusFor(err), err
	}
	return gp, http.StatusOK, nil
}

func GatePassTrail(ctx *gin.Context, svc *gatepass.Service) ([]models.GatePassTrail, int, error) {
	gp, status, err := GetGatePass(ctx, svc)
	if err != nil {
		return nil, status, err
	}
	rows, err := svc.Trail(ctx.Request.Context(), gp.ID)
	if err != nil {
		return nil, StatusFor(err), err
	}
	return rows, http.StatusOK, nil
}

func qrKey() ([]byte, error) {
	key, err := hex.DecodeString(os.Getenv("API_QRC_SECRET"))
	if err != nil {
		log.Printf("Could not read key from string: %s\n", err.Error())
		return nil, err
	}
	return key, nil
}

// GatePassQRCode renders the check-out code of an approved pass. It returns
// either a shareable URL (when assets go to S3) or a local file path.
func GatePassQRCode(ctx *gin.Context, svc *gatepass.Service) (url *string, file string, status int, err error) {
	gp, status, err := GetGatePass(ctx, svc)
	if err != nil {
		return nil, "", status, err
	}
	uid, _ := actorID(ctx)
	if gp.RequesterID != uid {
		return nil, "", http.StatusForbidden, errors.New("only the requester can download the code")
	}
	if gp.Status != types.GATEPASS_APPROVED {
		return nil, "", http.StatusConflict, fmt.Errorf("gate pass %d is %s", gp.ID, gp.Status)
	}

	filename := fmt.Sprintf("gatepass_%d", gp.ID)
	rd := lib.GetRedisClient()
	if rd != nil {
		cached, err := rd.Get(context.Background(), filename).Result()
		if err == nil && cached != "" {
			return &cached, "", http.StatusOK, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Error reading from cache: %s\n", err.Error())
		}
	}

	key, err := qrKey()
	if err != nil {
		return nil, "", http.StatusInternalServerError, err
	}
	code, err := utils.EncodeGatePassCode(key, gp.ID)
	if err != nil {
		log.Printf("Error encrypting message: %s\n", err.Error())
		return nil, "", http.StatusInternalServerError, err
	}
	qrc, err := qrcode.New(code)
	if err != nil {
		return nil, "", http.StatusInternalServerError, err
	}
	filepath := path.Join(os.Getenv("TEMP_DIR"), fmt.Sprintf("%s.jpeg", filename))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return nil, "", http.StatusInternalServerError, err
	}
	if os.Getenv("S3_ASSETS_BUCKET") == "" {
		return nil, filepath, http.StatusOK, nil
	}
	signed, err := awslib.S3UploadAsset(ctx.Request.Context(), filename, filepath, "image/jpeg")
	if err != nil {
		return nil, "", http.StatusInternalServerError, err
	}
	if rd != nil {
		if err := rd.Set(context.Background(), filename, *signed, shareLinkTTL).Err(); err != nil {
			log.Printf("Error caching share link [%s]: %s\n", filename, err.Error())
		}
	}
	return signed, "", http.StatusOK, nil
}

// VerifyGatePassCode checks a scanned code out of the gate.
func VerifyGatePassCode(ctx *gin.Context, svc *gatepass.Service) (*models.GatePass, int, error) {
	var body types.VerifyCodeRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	uid, err := actorID(ctx)
	if err != nil {
		return nil, http.StatusUnauthorized, err
	}
	key, err := qrKey()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	id, err := utils.DecodeGatePassCode(key, body.Code)
	if err != nil {
		return nil, StatusFor(err), err
	}
	gp, err := svc.MarkUsedAsSecurity(ctx.Request.Context(), id, uid, body.Comment)
	if err != nil {
		return nil, StatusFor(err), err
	}
	return gp, http.StatusOK, nil
}
