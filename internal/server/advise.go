package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"DietAdvisor/internal/advisor"
	"DietAdvisor/internal/bmi"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	sessionIDKey    = "sid"
	inFlightMessage = "A diet plan request is already in progress."
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// AdviseRequest is the JSON body accepted by POST /api/advise.
type AdviseRequest struct {
	Height           numericField `json:"height"`
	Weight           numericField `json:"weight"`
	Deficiencies     []string     `json:"deficiencies,omitempty"`
	CustomDeficiency string       `json:"custom_deficiency,omitempty"`
}

// numericField accepts either a JSON number or a JSON string. Validation of
// the content happens in the classifier.
type numericField string

func (n *numericField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = numericField(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = numericField(num.String())
	return nil
}

type deficiencyOption struct {
	Value   string
	Checked bool
}

// pageData feeds index.html.
type pageData struct {
	Categories []bmi.Category
	Options    []deficiencyOption
	Form       advisor.Form
	State      advisor.State
	Notice     string
}

func newPageData(form advisor.Form, state advisor.State) pageData {
	checked := make(map[string]bool, len(form.Deficiencies))
	for _, d := range form.Deficiencies {
		checked[d] = true
	}
	options := make([]deficiencyOption, 0, len(bmi.DeficiencyOptions()))
	for _, d := range bmi.DeficiencyOptions() {
		options = append(options, deficiencyOption{Value: string(d), Checked: checked[string(d)]})
	}
	return pageData{
		Categories: bmi.Categories(),
		Options:    options,
		Form:       form,
		State:      state,
	}
}

/* =================================================================================
									HANDLERS
=================================================================================*/

// indexHandler serves the single page with the session's current state.
func (s *Server) indexHandler(c echo.Context) error {
	id, err := s.sessionID(c)
	if err != nil {
		return err
	}
	var state advisor.State
	if session, ok := s.advisor.Lookup(id); ok {
		state = session.State()
	}
	return c.Render(http.StatusOK, "index.html", newPageData(advisor.Form{}, state))
}

// adviseFormHandler handles the HTML form post and re-renders the page.
func (s *Server) adviseFormHandler(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	form := advisor.Form{
		Height:           params.Get("height"),
		Weight:           params.Get("weight"),
		Deficiencies:     params["deficiencies"],
		CustomDeficiency: params.Get("custom_deficiency"),
	}

	state, err := session.Submit(c.Request().Context(), form)
	page := newPageData(form, state)
	if errors.Is(err, advisor.ErrInFlight) {
		page.Notice = inFlightMessage
	}
	return c.Render(statusFor(state, err), "index.html", page)
}

// adviseJSONHandler is the JSON flavour of the form post.
func (s *Server) adviseJSONHandler(c echo.Context) error {
	logger := loggerFrom(c)

	session, err := s.session(c)
	if err != nil {
		return err
	}

	var req AdviseRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	state, err := session.Submit(c.Request().Context(), advisor.Form{
		Height:           string(req.Height),
		Weight:           string(req.Weight),
		Deficiencies:     req.Deficiencies,
		CustomDeficiency: req.CustomDeficiency,
	})

	status := statusFor(state, err)
	switch {
	case errors.Is(err, advisor.ErrInFlight):
		return c.JSON(status, map[string]string{"error": inFlightMessage})
	case state.Error != "":
		return c.JSON(status, map[string]string{"error": state.Error})
	}
	return c.JSON(status, state.Result)
}

// statusFor maps a submission outcome to an HTTP status.
func statusFor(state advisor.State, err error) int {
	switch {
	case errors.Is(err, advisor.ErrInFlight):
		return http.StatusConflict
	case state.Error == "":
		return http.StatusOK
	case state.Error == advisor.ServiceErrorMessage:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// session resolves the caller's advisor session, creating it if needed. Only
// submissions create advisor sessions; page views just get a cookie.
func (s *Server) session(c echo.Context) (*advisor.Session, error) {
	id, err := s.sessionID(c)
	if err != nil {
		return nil, err
	}
	return s.advisor.Session(id), nil
}

// sessionID reads the session ID from the cookie, issuing a new one when
// there is none.
func (s *Server) sessionID(c echo.Context) (string, error) {
	// A cookie that fails to decode yields a fresh session, which is fine.
	sess, _ := s.store.Get(c.Request(), s.cfg.Session.CookieName)

	id, ok := sess.Values[sessionIDKey].(string)
	if !ok || id == "" {
		id = uuid.New().String()
		sess.Values[sessionIDKey] = id
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			loggerFrom(c).Error().Err(err).Msg("Failed to save session cookie")
			return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to start session")
		}
	}
	return id, nil
}
