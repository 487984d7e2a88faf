package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/matching"
	"github.com/samirrijal/civicfix/internal/core/usecases"
)

// OfficialLocation is the jurisdiction echoed back with a match.
type OfficialLocation struct {
	City     *string `json:"city"`
	State    *string `json:"state"`
	District *string `json:"district"`
	Pincode  *string `json:"pincode"`
	Ward     *string `json:"ward"`
	Area     *string `json:"area"`
}

// OfficialMatch is one scored official in a match response.
type OfficialMatch struct {
	UserID       string           `json:"user_id"`
	FullName     string           `json:"full_name"`
	Score        int              `json:"score"`
	MatchReasons []string         `json:"match_reasons"`
	Location     OfficialLocation `json:"location"`
}

// MatchResponse is the body of POST /v1/officials/match.
type MatchResponse struct {
	MatchedOfficial       *OfficialMatch  `json:"matched_official"`
	Alternatives          []OfficialMatch `json:"alternatives"`
	TotalOfficialsChecked int             `json:"total_officials_checked"`
	Message               string          `json:"message,omitempty"`
}

func toOfficialMatch(sc matching.ScoredCandidate) OfficialMatch {
	return OfficialMatch{
		UserID:       sc.OfficialID,
		FullName:     sc.FullName,
		Score:        sc.Score,
		MatchReasons: sc.MatchReasons,
		Location: OfficialLocation{
			City:     sc.City,
			State:    sc.State,
			District: sc.District,
			Pincode:  sc.Pincode,
			Ward:     sc.Ward,
			Area:     sc.Area,
		},
	}
}

func newMatchResponse(res matching.Result, total int) MatchResponse {
	resp := MatchResponse{
		Alternatives:          make([]OfficialMatch, 0, len(res.Alternatives)),
		TotalOfficialsChecked: total,
	}
	if res.BestMatch != nil {
		m := toOfficialMatch(*res.BestMatch)
		resp.MatchedOfficial = &m
	}
	for _, alt := range res.Alternatives {
		resp.Alternatives = append(resp.Alternatives, toOfficialMatch(alt))
	}
	if total == 0 {
		resp.Message = "No verified officials found"
	}
	return resp
}

// MatchOfficialHandler ranks verified officials against a location.
func MatchOfficialHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q matching.LocationQuery
		if err := c.BodyParser(&q); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		out, err := deps.Matcher.MatchOfficial(c.UserContext(), q)
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(newMatchResponse(out.Result, out.TotalChecked))
	}
}

// ListOfficialsHandler returns the verified officials directory.
func ListOfficialsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		officials, err := deps.Officials.ListVerified(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}

		pg := pageParams(c, 100, 200)
		officials = page(officials, &pg)
		// Contact details stay private.
		for i := range officials {
			officials[i].Email, officials[i].Phone = "", ""
		}

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: officials, Pagination: pg})
	}
}

// GetOfficialHandler returns the public profile of one official.
func GetOfficialHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid official id")
		}
		p, err := deps.Officials.Get(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		if p.Role != domain.RoleOfficial {
			return errNotFound(c, "official not found")
		}
		p.Email, p.Phone = "", ""
		return c.JSON(p)
	}
}

// OfficialRatingHandler returns the average review score of an official.
func OfficialRatingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid official id")
		}
		rating, err := deps.Reviews.OfficialRating(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(rating)
	}
}

// SetVerificationHandler lets an admin verify or suspend an official.
func SetVerificationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid official id")
		}
		var body struct {
			IsVerified *bool `json:"is_verified"`
		}
		if err := c.BodyParser(&body); err != nil || body.IsVerified == nil {
			return errBadRequest(c, "is_verified is required")
		}
		if err := deps.Officials.SetVerified(c.UserContext(), id, *body.IsVerified); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Suggestion is the matcher output attached to a new report.
type Suggestion struct {
	MatchedOfficial *OfficialMatch  `json:"matched_official"`
	Alternatives    []OfficialMatch `json:"alternatives"`
}

// ReportIssueResponse is the body of POST /v1/issues. Match is null when the
// directory could not be read.
type ReportIssueResponse struct {
	Issue *domain.Issue `json:"issue"`
	Match *Suggestion   `json:"match"`
}

// ReportIssueHandler stores a citizen's report and routes it to an official.
func ReportIssueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.ReportIssueInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		in.ReporterID = userID(c)

		issue, result, err := deps.Issues.Report(c.UserContext(), in)
		if err != nil {
			return errFrom(c, err)
		}

		resp := ReportIssueResponse{Issue: issue}
		if result != nil {
			m := newMatchResponse(*result, 1)
			resp.Match = &Suggestion{MatchedOfficial: m.MatchedOfficial, Alternatives: m.Alternatives}
		}
		c.Location("/v1/issues/" + issue.ID)
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GetIssueHandler returns a single issue.
func GetIssueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid issue id")
		}
		issue, err := deps.Issues.Get(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(issue)
	}
}

// NearbyIssuesHandler returns issues around a point for the public map.
func NearbyIssuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 2000)
		if radius <= 0 || radius > 10000 {
			return errBadRequest(c, "radius must be between 1 and 10000 meters")
		}

		issues, err := deps.Issues.ListNearby(c.UserContext(), lat, lon, radius, c.QueryInt("limit", 50))
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(issues)
	}
}

// MyIssuesHandler returns the caller's own reports.
func MyIssuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		issues, err := deps.Issues.ListByReporter(c.UserContext(), userID(c), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(issues)
	}
}

// AssignedIssuesHandler returns the issues assigned to the calling official.
func AssignedIssuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := domain.IssueStatus(c.Query("status"))
		issues, err := deps.Issues.ListByOfficial(c.UserContext(), userID(c), status, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(issues)
	}
}

// UpdateIssueStatusHandler moves an issue along its lifecycle.
func UpdateIssueStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid issue id")
		}
		var in usecases.UpdateStatusInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		issue, err := deps.Issues.UpdateStatus(c.UserContext(), id, userID(c), in)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(issue)
	}
}

// UploadMediaHandler accepts a multipart "file" photo for an issue.
func UploadMediaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid issue id")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return errBadRequest(c, "multipart field \"file\" is required")
		}
		f, err := fh.Open()
		if err != nil {
			return errBadRequest(c, "unreadable upload")
		}
		defer f.Close()

		url, err := deps.Issues.AttachMedia(c.UserContext(), id, userID(c), fh.Header.Get(fiber.HeaderContentType), fh.Size, f)
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
	}
}

// SubmitReviewHandler records the reporter's rating of a resolved issue.
func SubmitReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid issue id")
		}
		var in usecases.SubmitReviewInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		review, err := deps.Reviews.Submit(c.UserContext(), id, userID(c), in)
		if err != nil {
			return errFrom(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(review)
	}
}

// ListReviewsHandler returns the reviews of an issue.
func ListReviewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid issue id")
		}
		reviews, err := deps.Reviews.List(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(reviews)
	}
}

// ListNotificationsHandler returns the caller's notifications.
func ListNotificationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Notifications.ListForUser(c.UserContext(), userID(c), c.QueryBool("unread", false), c.QueryInt("limit", 50))
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "private, no-cache")
		return c.JSON(list)
	}
}

// MarkNotificationReadHandler marks one of the caller's notifications read.
func MarkNotificationReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return errBadRequest(c, "invalid notification id")
		}
		if err := deps.Notifications.MarkRead(c.UserContext(), id, userID(c)); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DispatchResponse is the body of POST /v1/notifications/dispatch.
type DispatchResponse struct {
	Message       string                  `json:"message"`
	Notifications []domain.DeliveryResult `json:"notifications"`
	IssueID       string                  `json:"issue_id"`
}

// DispatchNotificationsHandler re-sends the new-issue notifications inline.
func DispatchNotificationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.DispatchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		results, err := deps.Notifications.Dispatch(c.UserContext(), &req)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(DispatchResponse{
			Message:       "Processed " + strconv.Itoa(len(results)) + " notifications",
			Notifications: results,
			IssueID:       req.IssueID,
		})
	}
}

func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	v := c.Params(name)
	if _, err := uuid.Parse(v); err != nil {
		return "", false
	}
	return v, true
}
