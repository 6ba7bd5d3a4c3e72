package dynamics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

type JobStatus int

const (
	JobQueued JobStatus = iota
	JobRunning
	JobDone
	JobError
)

func (s JobStatus) String() string {
	switch s {
	case JobQueued:
		return "QUEUED"
	case JobRunning:
		return "RUNNING"
	case JobDone:
		return "DONE"
	case JobError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// experiment is one validated run input, ready to simulate.
type experiment struct {
	name     string
	schedule *Schedule
	timing   AcquireTiming
	numSlots int
	seed     uint64
	metadata map[string]any
}

/*
Job holds a batch of validated experiments. They are simulated one after another the
first time Result is called; later calls return the same outcome.
*/
type Job struct {
	ID string

	backend     *Backend
	options     Options
	experiments []experiment

	mu        sync.Mutex
	status    JobStatus
	startTime time.Time

	runMu  sync.Mutex
	result *Result
	err    error
}

func newJob(backend *Backend, options Options, experiments []experiment) *Job {
	return &Job{
		ID:          uuid.New().String(),
		backend:     backend,
		options:     options,
		experiments: experiments,
		status:      JobQueued,
	}
}

func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) setStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
}

// StartTime is when the job last started simulating, zero if it never has.
func (j *Job) StartTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.startTime
}

/*
Result simulates every experiment and assembles their outcomes. An experiment whose
integration fails, or whose outcome function errors, is reported with Success false
while the others proceed. Only cancellation of ctx fails the job as a whole.

The outcome is kept, so later calls return it without simulating again. A cancelled
run is not kept: the job goes back to JobQueued and the next call starts over.
*/
func (j *Job) Result(ctx context.Context) (*Result, error) {
	j.runMu.Lock()
	defer j.runMu.Unlock()

	if j.result != nil || j.err != nil {
		return j.result, j.err
	}

	result, err := j.run(ctx)
	if err != nil && ctx.Err() != nil {
		j.setStatus(JobQueued)
		return nil, err
	}

	j.result, j.err = result, err
	return result, err
}

func (j *Job) run(ctx context.Context) (*Result, error) {
	start := time.Now()
	j.mu.Lock()
	j.startTime = start
	j.status = JobRunning
	j.mu.Unlock()

	y0, err := j.backend.initialState(j.options)
	if err != nil {
		j.setStatus(JobError)
		return nil, err
	}

	result := &Result{
		BackendName: j.backend.Name(),
		JobID:       j.ID,
		Success:     true,
		Results:     make([]*ExperimentResult, 0, len(j.experiments)),
		Date:        start,
	}

	for _, exp := range j.experiments {
		start := time.Now()

		res, steps, err := j.runExperiment(ctx, exp, y0)
		if err != nil {
			j.setStatus(JobError)
			return nil, err
		}

		j.backend.metrics.recordExperiment(start, res, steps)
		result.Results = append(result.Results, res)
		result.Success = result.Success && res.Success
	}

	j.setStatus(JobDone)
	errnie.Info("Job.Result - job %s, experiments %d, success %v", j.ID, len(result.Results), result.Success)

	return result, nil
}

func (j *Job) runExperiment(ctx context.Context, exp experiment, y0 State) (*ExperimentResult, int, error) {
	failed := func(status string) *ExperimentResult {
		warn("experiment failed", "experiment", exp.name, "job", j.ID, "status", status)
		return &ExperimentResult{
			Shots:      j.options.Shots,
			Success:    false,
			Status:     status,
			MeasLevel:  j.options.MeasLevel,
			MeasReturn: j.options.MeasReturn,
			Seed:       exp.seed,
			Header: ExperimentHeader{
				Name:            exp.name,
				MemorySlots:     exp.numSlots,
				MaxOutcomeLevel: j.options.MaxOutcomeLevel,
				Metadata:        exp.metadata,
			},
		}
	}

	solved, err := j.backend.solver.Solve(ctx, exp.timing.TSpan, y0, exp.schedule, j.options.SolverOptions)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, err
		}
		return failed(err.Error()), 0, nil
	}
	if !solved.Success {
		return failed(solved.Message), solved.Steps, nil
	}

	options := j.options
	res, err := j.options.ExperimentResultFunction.ExperimentResult(ExperimentInput{
		Name:                  exp.name,
		SolverResult:          solved,
		MeasurementSubsystems: exp.timing.MeasuredSubsystems,
		MemorySlotIndices:     exp.timing.MemorySlots,
		NumMemorySlots:        exp.numSlots,
		Backend:               j.backend,
		Seed:                  exp.seed,
		Metadata:              exp.metadata,
		Options:               &options,
	})
	if err != nil {
		return failed(err.Error()), solved.Steps, nil
	}
	if res == nil {
		return failed("experiment result function returned no result"), solved.Steps, nil
	}

	if res.Header.Name == "" {
		res.Header.Name = exp.name
	}
	if res.Header.Metadata == nil {
		res.Header.Metadata = exp.metadata
	}

	return res, solved.Steps, nil
}
