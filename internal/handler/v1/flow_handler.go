package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/patient"
	"github.com/edflow/edflow/internal/service"
)

type FlowHandler struct {
	flow *service.FlowService
}

func NewFlowHandler(flow *service.FlowService) *FlowHandler {
	return &FlowHandler{flow: flow}
}

type registerRequest struct {
	ProtocolNumber      string `json:"protocol_number"`
	MedicalRecordNumber string `json:"medical_record_number"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Age                 int    `json:"age"`
	Sex                 string `json:"sex"`
	ArrivalMethod       string `json:"arrival_method"`
	ChiefComplaint      string `json:"chief_complaint"`
	IsRepeatVisit       bool   `json:"is_repeat_visit"`
}

func (h *FlowHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.flow.RegisterPatient(c.Request.Context(), patient.RegisterCommand{
		ProtocolNumber:      req.ProtocolNumber,
		MedicalRecordNumber: req.MedicalRecordNumber,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Age:                 req.Age,
		Sex:                 req.Sex,
		ArrivalMethod:       patient.ArrivalMethod(req.ArrivalMethod),
		ChiefComplaint:      req.ChiefComplaint,
		IsRepeatVisit:       req.IsRepeatVisit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, patientView(p))
}

type assignTriageRequest struct {
	AcuityLevel  int  `json:"acuity_level"`
	PriorityRank int  `json:"priority_rank"`
	TraumaLevel  *int `json:"trauma_activation_level"`
}

func (h *FlowHandler) AssignTriage(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req assignTriageRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.flow.AssignTriage(c.Request.Context(), id, req.AcuityLevel, req.PriorityRank, req.TraumaLevel)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

func (h *FlowHandler) UpdateVitals(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req VitalSignsPayload
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.flow.UpdateVitals(c.Request.Context(), id, req.toDomain())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

type complaintRequest struct {
	ChiefComplaint string `json:"chief_complaint"`
}

func (h *FlowHandler) UpdateChiefComplaint(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req complaintRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.flow.UpdateChiefComplaint(c.Request.Context(), id, req.ChiefComplaint)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

func (h *FlowHandler) AssignBed(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	bedID, ok := parseUUID(c, "bedId")
	if !ok {
		return
	}

	p, err := h.flow.AssignBed(c.Request.Context(), patientID, bedID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

func (h *FlowHandler) ReleaseBed(c *gin.Context) {
	bedID, ok := parseUUID(c, "bedId")
	if !ok {
		return
	}

	b, err := h.flow.ReleaseBed(c.Request.Context(), bedID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, bedView(b))
}

func (h *FlowHandler) MarkBedAvailable(c *gin.Context) {
	bedID, ok := parseUUID(c, "bedId")
	if !ok {
		return
	}

	b, err := h.flow.MarkBedAvailable(c.Request.Context(), bedID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, bedView(b))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *FlowHandler) TransitionStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.flow.TransitionStatus(c.Request.Context(), id, patient.Status(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

type transferRequest struct {
	Admit bool `json:"admit"`
}

func (h *FlowHandler) TransferOrAdmit(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.flow.TransferOrAdmit(c.Request.Context(), id, req.Admit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

type dischargeRequest struct {
	Disposition string `json:"disposition"`
}

func (h *FlowHandler) Discharge(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dischargeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Disposition == "" {
		req.Disposition = string(patient.DispositionRoutine)
	}

	p, err := h.flow.Discharge(c.Request.Context(), id, patient.Disposition(req.Disposition))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

func (h *FlowHandler) FastTrackDischarge(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.flow.FastTrackDischarge(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

func (h *FlowHandler) GetPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.flow.GetPatient(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patientView(p))
}

func (h *FlowHandler) GetQueue(c *gin.Context) {
	respondOK(c, patientViews(h.flow.QueueSnapshot()))
}

func (h *FlowHandler) GetBedBoard(c *gin.Context) {
	respondOK(c, bedViews(h.flow.BedBoard()))
}

func (h *FlowHandler) GetActiveAlerts(c *gin.Context) {
	respondOK(c, alertViews(h.flow.ActiveAlerts()))
}

func (h *FlowHandler) GetPatientAlerts(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	respondOK(c, alertViews(h.flow.PatientAlerts(id)))
}

type acknowledgeRequest struct {
	Kind string `json:"kind"`
}

func (h *FlowHandler) AcknowledgeAlert(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req acknowledgeRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.flow.AcknowledgeAlert(c.Request.Context(), id, alert.Kind(req.Kind))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, alertView(a))
}

func (h *FlowHandler) GetCensus(c *gin.Context) {
	respondOK(c, h.flow.Census())
}
