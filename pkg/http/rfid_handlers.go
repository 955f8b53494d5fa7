package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

type AccessRequest struct {
	RFIDTag   string `json:"rfid_tag" zog:"rfid_tag"`
	PIN       string `json:"pin" zog:"pin"`
	Action    string `json:"action" zog:"action"`
	OwnerName string `json:"owner_name" zog:"owner_name"`
}

var accessRequestSchema = z.Struct(z.Shape{
	"RFIDTag":   z.String().Trim().Min(1).Max(20).Required(),
	"PIN":       z.String().Max(10),
	"Action":    z.String().OneOf([]string{"", string(models.AccessActionToggle), string(models.AccessActionVerifyPIN)}),
	"OwnerName": z.String().Max(100),
})

type ChangePINRequest struct {
	RFIDTag string `json:"rfid_tag" zog:"rfid_tag"`
	OldPIN  string `json:"old_pin" zog:"old_pin"`
	NewPIN  string `json:"new_pin" zog:"new_pin"`
}

var changePINRequestSchema = z.Struct(z.Shape{
	"RFIDTag": z.String().Trim().Min(1).Max(20).Required(),
	"OldPIN":  z.String().Max(10),
	"NewPIN":  z.String().Min(1).Max(10).Required(),
})

// accessError answers in the access result shape so device firmware only
// has to parse one body.
func accessError(c *gin.Context, status int, rfidTag string, err error) {
	c.JSON(status, models.AccessResult{
		Message: "Error: " + err.Error(),
		RFIDTag: rfidTag,
	})
}

func (rs *RestfulServer) PostAccess(c *gin.Context) {
	var req AccessRequest
	if issues := accessRequestSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		accessError(c, http.StatusBadRequest, "", errors.New("rfid_tag is required and action must be toggle or verify_pin"))
		return
	}

	tag := iot.NormalizeTag(req.RFIDTag)
	if !rs.CheckLimiter(tag) {
		rejectLimited(c)
		return
	}

	result, err := rs.Iot.Access.Authenticate(&models.AccessRequest{
		RFIDTag:   tag,
		PIN:       req.PIN,
		Action:    models.AccessAction(req.Action),
		OwnerName: req.OwnerName,
	})
	if err != nil {
		accessError(c, statusFor(err), tag, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (rs *RestfulServer) ChangePIN(c *gin.Context) {
	var req ChangePINRequest
	if issues := changePINRequestSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		accessError(c, http.StatusBadRequest, "", errors.New("rfid_tag and new_pin are required"))
		return
	}

	tag := iot.NormalizeTag(req.RFIDTag)
	if !rs.CheckLimiter(tag) {
		rejectLimited(c)
		return
	}

	result, err := rs.Iot.Access.ChangePIN(tag, req.OldPIN, req.NewPIN)
	if err != nil {
		accessError(c, statusFor(err), tag, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (rs *RestfulServer) DeactivateAccess(c *gin.Context) {
	tag := iot.NormalizeTag(c.Param("rfidTag"))

	result, err := rs.Iot.Access.Deactivate(tag)
	if err != nil {
		accessError(c, statusFor(err), tag, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (rs *RestfulServer) GetAccess(c *gin.Context) {
	tag := iot.NormalizeTag(c.Param("rfidTag"))

	access, err := rs.Iot.Access.GetAccess(tag)
	if errors.Is(err, iot.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"found": false, "message": models.AccessMessageNotFound})
		return
	}
	if err != nil {
		rs.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found":          true,
		"rfid_tag":       access.RFIDTag,
		"owner_name":     access.OwnerName,
		"active":         access.Active,
		"access_count":   access.AccessCount,
		"last_access_at": access.LastAccessAt,
	})
}
