package verification

import (
	"context"
	"time"

	"github.com/marketplace-verify/internal/application/resolver"
	"github.com/marketplace-verify/internal/domain"
	"github.com/marketplace-verify/internal/observability/metrics"
)

// View names the frontend view a flow step should render.
type View string

const (
	ViewPlatformSelect  View = "platform_select"
	ViewGamerTag        View = "gamer_tag"
	ViewCode            View = "verification_code"
	ViewAgreement       View = "agreement"
	ViewProfileRedirect View = "profile"
)

// Outcome tells the handler what to render next.
type Outcome struct {
	View     View
	Platform domain.Platform // set for gamer_tag and verification_code views
	Warning  string          // user-safe warning to render inline, if any
}

// RecordStore is the slice of the record repository the state machine needs.
type RecordStore interface {
	Get(ctx context.Context, username string) (*domain.VerificationRecord, error)
	Insert(ctx context.Context, rec *domain.VerificationRecord) error
	Update(ctx context.Context, username string, mutate func(*domain.VerificationRecord)) (*domain.VerificationRecord, error)
}

// IdentityResolver resolves OAuth credential material to a Reddit username.
type IdentityResolver interface {
	ResolveUsername(ctx context.Context, code, refreshToken string) (username, refreshToken2 string, err error)
}

// BlacklistChecker runs the asynchronous blacklist cross-reference.
type BlacklistChecker interface {
	Run(ctx context.Context, username string)
}

// ResolverProvider yields the resolver for a platform.
type ResolverProvider interface {
	For(p domain.Platform) (resolver.Resolver, error)
}

// Service drives the verification flow: OAuth callback branching, the
// platform confirmation queue held in session state, code checks, and the
// final agreement commit.
type Service struct {
	records   RecordStore
	identity  IdentityResolver
	resolvers ResolverProvider
	blacklist BlacklistChecker
}

func NewService(records RecordStore, identity IdentityResolver, resolvers ResolverProvider, blacklist BlacklistChecker) *Service {
	return &Service{records: records, identity: identity, resolvers: resolvers, blacklist: blacklist}
}

// HandleCallback processes the OAuth redirect: it resolves the caller's
// identity, binds it to the session, and branches on the stored record.
// New users get a skeleton record; returning incomplete users restart the
// flow with refreshed credentials; completed users go straight to their
// profile.
func (s *Service) HandleCallback(ctx context.Context, sess *domain.VerificationSession, code string) (Outcome, error) {
	username, refreshToken, err := s.identity.ResolveUsername(ctx, code, "")
	if err != nil {
		return Outcome{}, err
	}
	sess.Username = domain.CanonicalUsername(username)
	sess.RefreshToken = refreshToken
	sess.Reset()

	rec, err := s.records.Get(ctx, sess.Username)
	switch {
	case err == nil && rec.VerificationComplete:
		// Merge the fresh credentials and route straight to the profile.
		if _, err := s.records.Update(ctx, sess.Username, func(r *domain.VerificationRecord) {
			r.OAuthCode = code
			r.RefreshToken = refreshToken
		}); err != nil {
			return Outcome{}, err
		}
		return Outcome{View: ViewProfileRedirect}, nil

	case err == nil:
		// Existing but incomplete: refresh credentials, keep everything
		// else (notably the blacklist flag and CreatedAt) intact.
		if _, err := s.records.Update(ctx, sess.Username, func(r *domain.VerificationRecord) {
			r.OAuthCode = code
			r.RefreshToken = refreshToken
			r.VerificationComplete = false
		}); err != nil {
			return Outcome{}, err
		}
		return Outcome{View: ViewPlatformSelect}, nil
	}

	if err := s.records.Insert(ctx, &domain.VerificationRecord{
		Username:     sess.Username,
		CreatedAt:    time.Now().UTC(),
		OAuthCode:    code,
		RefreshToken: refreshToken,
	}); err != nil {
		return Outcome{}, err
	}
	return Outcome{View: ViewPlatformSelect}, nil
}

// SelectPlatforms records the user's platform checklist. An empty
// selection re-renders the selection view with a warning and leaves the
// session untouched.
func (s *Service) SelectPlatforms(sess *domain.VerificationSession, names []string) (Outcome, error) {
	if len(names) == 0 {
		return Outcome{View: ViewPlatformSelect, Warning: "Please choose at least one platform."}, nil
	}
	platforms := make([]domain.Platform, 0, len(names))
	for _, name := range names {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			return Outcome{}, err
		}
		platforms = append(platforms, p)
	}
	sess.SelectedPlatforms = platforms
	return s.NextStep(sess), nil
}

// NextStep pops the next platform off the queue and asks for its gamer
// tag, or renders the final agreement once the queue is empty.
func (s *Service) NextStep(sess *domain.VerificationSession) Outcome {
	platform, ok := sess.PopPlatform()
	if !ok {
		return Outcome{View: ViewAgreement}
	}
	sess.Platform = platform
	return Outcome{View: ViewGamerTag, Platform: platform}
}

// SubmitGamerTag runs the current platform's resolver on the submitted
// tag. A recoverable failure re-queues the platform at the front so the
// user retries it immediately. PC commits straight away; challenge
// platforms stage the identity and wait for the code.
func (s *Service) SubmitGamerTag(ctx context.Context, sess *domain.VerificationSession, tag string) (Outcome, error) {
	platform := sess.Platform
	r, err := s.resolvers.For(platform)
	if err != nil {
		return Outcome{}, err
	}

	res, err := r.Resolve(ctx, tag)
	if err != nil {
		re, ok := domain.AsResolveError(err)
		if !ok {
			return Outcome{}, err
		}
		sess.RequeuePlatform(platform)
		out := s.NextStep(sess)
		out.Warning = re.Message
		return out, nil
	}

	sess.GamerTag = res.Tag
	sess.GamerTagID = res.ID

	if !res.RequiresCode {
		if err := s.commitStaged(ctx, sess); err != nil {
			return Outcome{}, err
		}
		return s.NextStep(sess), nil
	}

	sess.VerificationCode = res.Code
	return Outcome{View: ViewCode, Platform: platform}, nil
}

// codeLength is the length user input is truncated to before comparison.
const codeLength = 6

// SubmitCode compares the user-submitted code against the staged one. A
// mismatch re-renders the code view without consuming the platform's
// place in the queue.
func (s *Service) SubmitCode(ctx context.Context, sess *domain.VerificationSession, input string) (Outcome, error) {
	if len(input) > codeLength {
		input = input[:codeLength]
	}
	if sess.VerificationCode == "" || input != sess.VerificationCode {
		return Outcome{
			View:     ViewCode,
			Platform: sess.Platform,
			Warning:  "Verification Code incorrect. Please try again.",
		}, nil
	}
	if err := s.commitStaged(ctx, sess); err != nil {
		return Outcome{}, err
	}
	return s.NextStep(sess), nil
}

// AcceptAgreement commits the completed verification and kicks off the
// blacklist cross-reference in the background. The check gets a fresh
// context: it must outlive this request and its failure must never
// surface to the user.
func (s *Service) AcceptAgreement(ctx context.Context, sess *domain.VerificationSession) error {
	if !sess.LoggedIn() {
		return domain.ErrUnauthorized
	}
	if _, err := s.records.Update(ctx, sess.Username, func(r *domain.VerificationRecord) {
		r.VerificationComplete = true
	}); err != nil {
		return err
	}
	metrics.VerificationsCompletedTotal.Inc()

	go s.blacklist.Run(context.Background(), sess.Username)

	sess.Reset()
	return nil
}

// commitStaged writes the confirmed platform identity into the record via
// read-merge-write, leaving VerificationComplete false until the
// agreement is accepted, and clears the staged challenge.
func (s *Service) commitStaged(ctx context.Context, sess *domain.VerificationSession) error {
	platform, tag, id := sess.Platform, sess.GamerTag, sess.GamerTagID
	if _, err := s.records.Update(ctx, sess.Username, func(r *domain.VerificationRecord) {
		r.SetPlatformIdentity(platform, tag, id)
		r.VerificationComplete = false
	}); err != nil {
		return err
	}
	sess.ClearChallenge()
	return nil
}
