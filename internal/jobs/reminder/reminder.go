package reminder

import (
	"context"
	"fmt"
	"time"

	"stagehand/config"
	"stagehand/infras/kafka"
	"stagehand/infras/otel"
	performanceModel "stagehand/internal/domains/performance/model"
	performanceRepo "stagehand/internal/domains/performance/repository"
	rehearsalModel "stagehand/internal/domains/rehearsal/model"
	rehearsalRepo "stagehand/internal/domains/rehearsal/repository"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/timezone"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	KindRehearsal   = "rehearsal"
	KindPerformance = "performance"

	// fetchLimit bounds how many items of each kind a single day can produce.
	fetchLimit = 500
)

// Reminder is published to the reminder topic once per item happening tomorrow.
type Reminder struct {
	Kind          string `json:"kind"`
	ID            string `json:"id"`
	PerformanceID string `json:"performance_id"`
	Title         string `json:"title,omitempty"`
	Location      string `json:"location,omitempty"`
	DateKey       string `json:"date_key"`
	StartsAt      string `json:"starts_at"`
	Display       string `json:"display"`
	CallTime      string `json:"call_time,omitempty"`
}

type Job struct {
	cfg             *config.Config
	rehearsalRepo   rehearsalRepo.Rehearsal
	performanceRepo performanceRepo.Performance
	kafka           kafka.Client
	otel            otel.Otel
	conv            *timezone.Converter
	cron            *cron.Cron
}

func New(
	cfg *config.Config,
	rehearsalRepo rehearsalRepo.Rehearsal,
	performanceRepo performanceRepo.Performance,
	kafka kafka.Client,
	otel otel.Otel,
	conv *timezone.Converter,
) (*Job, error) {
	loc, err := conv.Location(conv.DefaultZone())
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler location: %w", err)
	}

	return &Job{
		cfg:             cfg,
		rehearsalRepo:   rehearsalRepo,
		performanceRepo: performanceRepo,
		kafka:           kafka,
		otel:            otel,
		conv:            conv,
		cron:            cron.New(cron.WithLocation(loc)),
	}, nil
}

// Start schedules Run on the configured cron spec. It does nothing when the scheduler is disabled.
func (j *Job) Start() error {
	if !j.cfg.Scheduler.Enable {
		log.Info().Msg("reminder scheduler disabled")

		return nil
	}

	_, err := j.cron.AddFunc(j.cfg.Scheduler.ReminderCron, func() {
		if _, err := j.Run(context.Background()); err != nil {
			log.Error().Err(err).Msg("reminder run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	j.cron.Start()

	log.Info().Str("spec", j.cfg.Scheduler.ReminderCron).Str("zone", j.conv.DefaultZone()).Msg("reminder scheduler started")

	return nil
}

// Stop halts the scheduler and waits for a running job until ctx expires.
func (j *Job) Stop(ctx context.Context) {
	done := j.cron.Stop().Done()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("reminder job still running at shutdown")
	}
}

// Run publishes a reminder for every rehearsal and performance on the studio's next calendar day.
func (j *Job) Run(ctx context.Context) (sent int, err error) {
	ctx, scope := j.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reminder.Run")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	loc, err := j.conv.Location(j.conv.DefaultZone())
	if err != nil {
		return 0, fmt.Errorf("failed to load studio location: %w", err)
	}

	now := j.conv.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	until := time.Date(now.Year(), now.Month(), now.Day()+2, 0, 0, 0, 0, loc)
	dateKey := from.Format(timezone.DateKeyLayout)

	var (
		rehearsals   []rehearsalModel.Rehearsal
		performances []performanceModel.Performance
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		day, err := rehearsalModel.DateFromKey(dateKey)
		if err != nil {
			return err
		}

		rehearsals, err = j.rehearsalRepo.GetAll(gctx, listParams(rehearsalModel.FieldStartTime), rehearsalsOn(day))
		if err != nil {
			return fmt.Errorf("failed to get rehearsals: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		var err error

		performances, err = j.performanceRepo.GetAll(gctx, listParams(performanceModel.FieldStartsAt), performancesBetween(from.UTC(), until.UTC()))
		if err != nil {
			return fmt.Errorf("failed to get performances: %w", err)
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Str("date", dateKey).Msg("failed to collect reminders")

		return 0, err
	}

	messages := make([]kafka.Message, 0, len(rehearsals)+len(performances))

	for _, r := range rehearsals {
		messages = append(messages, kafka.Message{Key: r.ID, Value: j.fromRehearsal(r)})
	}

	for _, p := range performances {
		messages = append(messages, kafka.Message{Key: p.ID, Value: j.fromPerformance(p)})
	}

	if len(messages) == 0 {
		log.Info().Str("date", dateKey).Msg("nothing to remind")

		return 0, nil
	}

	if err = j.kafka.SendMessages(ctx, j.cfg.Kafka.Topics.Reminder, messages...); err != nil {
		log.Error().Err(err).Str("date", dateKey).Msg("failed to publish reminders")

		return 0, fmt.Errorf("failed to publish reminders: %w", err)
	}

	log.Info().Str("date", dateKey).Int("rehearsals", len(rehearsals)).Int("performances", len(performances)).Msg("reminders published")

	return len(messages), nil
}

func (j *Job) fromRehearsal(r rehearsalModel.Rehearsal) Reminder {
	start := r.StartLocal()

	return Reminder{
		Kind:          KindRehearsal,
		ID:            r.ID,
		PerformanceID: r.PerformanceID,
		Location:      r.Location,
		DateKey:       r.DateKey(),
		StartsAt:      j.conv.LocalToUTCInstant(start, ""),
		Display:       j.conv.FormatForDisplay(start, ""),
	}
}

func (j *Job) fromPerformance(p performanceModel.Performance) Reminder {
	startsAt := timezone.FormatInstant(p.StartsAt)

	reminder := Reminder{
		Kind:          KindPerformance,
		ID:            p.ID,
		PerformanceID: p.ID,
		Title:         p.Title,
		Location:      p.VenueName,
		DateKey:       j.conv.DateKey(startsAt, p.Timezone),
		StartsAt:      startsAt,
		Display:       j.conv.FormatForDisplay(startsAt, p.Timezone),
	}

	if p.CallTime != "" {
		reminder.CallTime = j.conv.FormatClockTime(p.CallTime)
	}

	return reminder
}

func listParams(sortBy string) gDto.QueryParams {
	return gDto.QueryParams{
		Page:    1,
		Limit:   fetchLimit,
		SortBy:  sortBy,
		SortDir: gDto.SortDirAsc,
	}
}

func rehearsalsOn(day time.Time) gDto.FilterGroup {
	return gDto.And(gDto.Filter{
		Field:    rehearsalModel.FieldRehearsalDate,
		Operator: gDto.FilterOperatorEq,
		Value:    day,
		Table:    rehearsalModel.TableName,
	})
}

func performancesBetween(from, until time.Time) gDto.FilterGroup {
	return gDto.And(
		gDto.Filter{
			ArgName:  "starts_from",
			Field:    performanceModel.FieldStartsAt,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    from,
			Table:    performanceModel.TableName,
		},
		gDto.Filter{
			ArgName:  "starts_until",
			Field:    performanceModel.FieldStartsAt,
			Operator: gDto.FilterOperatorLess,
			Value:    until,
			Table:    performanceModel.TableName,
		},
	)
}
