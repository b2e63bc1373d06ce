// workers/daily_notifier.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/go-co-op/gocron/v2"

	"leetcode-companion/logger"
	"leetcode-companion/metrics"
	"leetcode-companion/models"
	"leetcode-companion/services"
	"leetcode-companion/utils"
)

const (
	notificationTitle  = "🎯 New Daily Challenge Available!"
	defaultProblemName = "New Problem"
	trackingWindowDays = 7
)

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body, icon string) error
}

// DesktopNotifier delivers through the OS notification center.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title, body, icon string) error {
	return beeep.Notify(title, body, icon)
}

// ChallengeSource yields today's challenge record, or services.ErrNoChallengeToday.
type ChallengeSource interface {
	TodaysChallenge(ctx context.Context) (*models.DailyChallenge, error)
}

// NotifierOptions configures a DailyNotifier.
type NotifierOptions struct {
	TrackingFile string
	Icon         string
	StartDelay   time.Duration
	Interval     time.Duration
}

// DailyNotifier raises at most one "new daily challenge" notification per day,
// and only while the shell reports an open daily on the leaderboard view.
type DailyNotifier struct {
	source   ChallengeSource
	notifier Notifier
	calendar services.Calendar
	opts     NotifierOptions

	stateMu sync.RWMutex
	state   models.AppState

	checkMu     sync.Mutex
	lastChecked string

	sched gocron.Scheduler
}

func NewDailyNotifier(source ChallengeSource, notifier Notifier, cal services.Calendar, opts NotifierOptions) *DailyNotifier {
	if opts.StartDelay <= 0 {
		opts.StartDelay = 5 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	return &DailyNotifier{
		source:   source,
		notifier: notifier,
		calendar: cal,
		opts:     opts,
		state:    models.WelcomeState(),
	}
}

// UpdateState replaces the app-state snapshot.
func (n *DailyNotifier) UpdateState(step string, user *models.SessionUser, daily *models.SessionDaily) {
	now := n.calendar.Now()
	n.stateMu.Lock()
	n.state = models.AppState{Step: step, UserData: user, DailyData: daily, LastUpdated: &now}
	n.stateMu.Unlock()
}

// ClearState resets the snapshot to the welcome default.
func (n *DailyNotifier) ClearState() {
	n.stateMu.Lock()
	n.state = models.WelcomeState()
	n.stateMu.Unlock()
}

// State returns a copy of the current snapshot.
func (n *DailyNotifier) State() models.AppState {
	n.stateMu.RLock()
	defer n.stateMu.RUnlock()
	return n.state
}

// Check runs one gated poll for today's challenge.
func (n *DailyNotifier) Check(ctx context.Context) error {
	n.checkMu.Lock()
	defer n.checkMu.Unlock()
	return n.check(ctx)
}

// Trigger forgets today's check and sent marker, then checks again.
func (n *DailyNotifier) Trigger(ctx context.Context) error {
	n.checkMu.Lock()
	defer n.checkMu.Unlock()

	logger.Log.Info("[Notifier] manual check triggered")
	n.lastChecked = ""
	tracking := n.loadTracking()
	delete(tracking, n.calendar.Today())
	n.saveTracking(tracking)

	return n.check(ctx)
}

func (n *DailyNotifier) check(ctx context.Context) error {
	today := n.calendar.Today()
	tracking := n.loadTracking()

	if n.lastChecked == today && tracking[today] {
		return nil
	}

	if !n.State().WantsDailyReminder() {
		logger.Log.Debug("[Notifier] user not on leaderboard or daily already done, skipping")
		n.lastChecked = today
		return nil
	}

	rec, err := n.source.TodaysChallenge(ctx)
	if errors.Is(err, services.ErrNoChallengeToday) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up today's challenge: %w", err)
	}
	if tracking[today] {
		return nil
	}

	title := rec.Title
	if title == "" {
		title = defaultProblemName
	}
	body := fmt.Sprintf("Today's problem: %s\nEarn %d XP by solving it!", title, services.XPPerCompletion)
	if err := n.notifier.Notify(notificationTitle, body, n.opts.Icon); err != nil {
		return fmt.Errorf("show notification: %w", err)
	}
	metrics.NotificationsSent.Inc()
	logger.Log.WithField("problem", title).Info("[Notifier] 🔔 daily challenge notification sent")

	tracking[today] = true
	PruneTracking(tracking, today)
	n.saveTracking(tracking)
	n.lastChecked = today
	return nil
}

// PruneTracking drops entries dated before today minus the tracking window.
func PruneTracking(tracking map[string]bool, today string) {
	cutoff := services.ShiftDate(today, -trackingWindowDays)
	for date := range tracking {
		if date < cutoff {
			delete(tracking, date)
		}
	}
}

func (n *DailyNotifier) loadTracking() map[string]bool {
	tracking := map[string]bool{}
	if err := utils.ReadJSONFile(n.opts.TrackingFile, &tracking); err != nil {
		logger.Log.WithError(err).Warn("[Notifier] could not read tracking file")
		return map[string]bool{}
	}
	if tracking == nil {
		tracking = map[string]bool{}
	}
	return tracking
}

func (n *DailyNotifier) saveTracking(tracking map[string]bool) {
	if err := utils.WriteJSONFile(n.opts.TrackingFile, tracking); err != nil {
		logger.Log.WithError(err).Error("[Notifier] could not write tracking file")
	}
}

// Start schedules one check after the start delay and then one every interval.
func (n *DailyNotifier) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithClock(n.calendar.Clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	run := func() {
		if err := n.Check(ctx); err != nil {
			logger.Log.WithError(err).Error("[Notifier] daily check failed")
		}
	}

	if _, err := sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(n.calendar.Now().Add(n.opts.StartDelay))),
		gocron.NewTask(run),
	); err != nil {
		return fmt.Errorf("schedule startup check: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(n.opts.Interval),
		gocron.NewTask(run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("schedule hourly check: %w", err)
	}

	sched.Start()
	n.sched = sched
	logger.Log.WithField("interval", n.opts.Interval.String()).Info("🔁 [Notifier] daily challenge checker started")
	return nil
}

// Stop shuts the scheduler down. Safe to call when Start was never called.
func (n *DailyNotifier) Stop() error {
	if n.sched == nil {
		return nil
	}
	logger.Log.Info("⏹️ [Notifier] daily challenge checker stopped")
	return n.sched.Shutdown()
}
