package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bankisha/internal/ai"
	"bankisha/internal/domain"
	"bankisha/internal/store"
)

const questionsSystemPrompt = `You prepare an AI interviewer for a recorded interview.
Respond with a single JSON object and nothing else: {"questions": [string]}.
Produce 5 to 8 open questions matching the interview objective and audience, ordered from warm-up to depth.`

var transcriptRoles = map[string]struct{}{
	"interviewer": {},
	"interviewee": {},
	"assistant":   {},
}

// InterviewInput carries the settings of a new interview.
type InterviewInput struct {
	IntervieweeName    string
	IntervieweeCompany string
	IntervieweeTitle   string
	InterviewerName    string
	Objective          string
	Purpose            string
	Category           string
	TargetAudience     string
	MediaType          string
}

// AppendMessageInput identifies the interview either by id (authenticated
// owner) or by share token (invitee) and carries the message.
type AppendMessageInput struct {
	InterviewID string
	ShareToken  string
	Role        string
	Content     string
}

// CreateInterview registers an interview in collecting state with a fresh
// share token for the invitee link.
func (s *Service) CreateInterview(ctx context.Context, callerID string, input InterviewInput) (domain.Interview, error) {
	if strings.TrimSpace(input.Objective) == "" {
		return domain.Interview{}, fmt.Errorf("%w: objective required", ErrInvalid)
	}
	interview := domain.Interview{
		ID:                 store.NewID(),
		ShareToken:         uuid.NewString(),
		IntervieweeName:    strings.TrimSpace(input.IntervieweeName),
		IntervieweeCompany: strings.TrimSpace(input.IntervieweeCompany),
		IntervieweeTitle:   strings.TrimSpace(input.IntervieweeTitle),
		InterviewerName:    strings.TrimSpace(input.InterviewerName),
		Objective:          strings.TrimSpace(input.Objective),
		Purpose:            strings.TrimSpace(input.Purpose),
		Category:           strings.TrimSpace(input.Category),
		TargetAudience:     strings.TrimSpace(input.TargetAudience),
		MediaType:          strings.TrimSpace(input.MediaType),
		Status:             domain.InterviewCollecting,
		CreatedBy:          callerID,
		CreatedAt:          s.now(),
		UpdatedAt:          s.now(),
	}
	if user, ok, err := s.store.GetUser(callerID); err != nil {
		return domain.Interview{}, fmt.Errorf("load user: %w", err)
	} else if ok {
		interview.CompanyID = user.CompanyID
	}
	if err := s.store.CreateInterview(interview); err != nil {
		return domain.Interview{}, fmt.Errorf("create interview: %w", err)
	}
	return interview, nil
}

// Interview returns an interview to its owner (or superAdmin).
func (s *Service) Interview(ctx context.Context, callerID, id string) (domain.Interview, error) {
	interview, ok, err := s.store.GetInterview(id)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("load interview: %w", err)
	}
	if !ok {
		return domain.Interview{}, fmt.Errorf("%w: interview %s", ErrNotFound, id)
	}
	if err := s.authorizeInterviewManage(callerID, interview); err != nil {
		return domain.Interview{}, err
	}
	return interview, nil
}

// ShareToken returns the invitee link token to the interview owner.
func (s *Service) ShareToken(ctx context.Context, callerID, id string) (string, error) {
	interview, err := s.Interview(ctx, callerID, id)
	if err != nil {
		return "", err
	}
	return interview.ShareToken, nil
}

// SharedInterview resolves an interview for an unauthenticated invitee by
// its share token. The token is the only credential, so an unknown token
// is simply not found.
func (s *Service) SharedInterview(ctx context.Context, token string) (domain.Interview, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Interview{}, fmt.Errorf("%w: token required", ErrInvalid)
	}
	interview, ok, err := s.store.GetInterviewByShareToken(token)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("load interview: %w", err)
	}
	if !ok {
		return domain.Interview{}, fmt.Errorf("%w: interview", ErrNotFound)
	}
	return interview, nil
}

// AppendMessage adds a role-tagged message to a collecting interview.
// callerID is empty for invitee calls authorized by share token.
func (s *Service) AppendMessage(ctx context.Context, callerID string, input AppendMessageInput) error {
	role := strings.TrimSpace(input.Role)
	if _, ok := transcriptRoles[role]; !ok {
		return fmt.Errorf("%w: unknown transcript role %q", ErrInvalid, input.Role)
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: content required", ErrInvalid)
	}

	var interview domain.Interview
	var err error
	switch {
	case callerID != "" && input.InterviewID != "":
		interview, err = s.Interview(ctx, callerID, input.InterviewID)
	case input.ShareToken != "":
		interview, err = s.SharedInterview(ctx, input.ShareToken)
	default:
		return fmt.Errorf("%w: interviewId or token required", ErrInvalid)
	}
	if err != nil {
		return err
	}
	if interview.Status != domain.InterviewCollecting {
		return fmt.Errorf("%w: interview is no longer collecting", ErrInvalid)
	}
	msg := domain.TranscriptMessage{
		Role:      role,
		Content:   input.Content,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendTranscript(interview.ID, msg); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// GenerateInterviewQuestions builds an opening question list from the
// interview settings and the shared reference material.
func (s *Service) GenerateInterviewQuestions(ctx context.Context, callerID, interviewID string) ([]string, error) {
	interview, err := s.Interview(ctx, callerID, interviewID)
	if err != nil {
		return nil, err
	}
	reference, err := s.loadSkillContext(ctx)
	if err != nil {
		return nil, err
	}

	var prompt strings.Builder
	prompt.WriteString(interviewBrief(interview))
	if reference != "" {
		prompt.WriteString("\nReference material:\n")
		prompt.WriteString(reference)
	}

	out, err := ai.GenerateJSON(ctx, s.generator, questionsSystemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}
	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode questions: %s", ErrGenerationFailed, err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions produced", ErrGenerationFailed)
	}
	return payload.Questions, nil
}

func (s *Service) authorizeInterviewManage(callerID string, interview domain.Interview) error {
	role, err := s.RoleOf(callerID)
	if err != nil {
		return err
	}
	if role == domain.RoleSuperAdmin || interview.CreatedBy == callerID {
		return nil
	}
	return ErrForbidden
}
