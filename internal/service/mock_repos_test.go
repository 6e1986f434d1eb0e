package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/events"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ── In-memory UserRepository ──

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetAll(ctx context.Context) ([]domain.User, error) {
	return r.filter(func(domain.User) bool { return true }), nil
}

func (r *fakeUserRepo) GetByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return u.Role == role }), nil
}

func (r *fakeUserRepo) filter(keep func(domain.User) bool) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = user.Name
	u.Email = user.Email
	r.users[user.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

// ── In-memory ExerciseRepository ──

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]domain.Exercise
	workouts  *fakeWorkoutRepo // for IsReferenced
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[primitive.ObjectID]domain.Exercise{}}
}

func (r *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = time.Now().UTC()
	exercise.UpdatedAt = exercise.CreatedAt
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeExerciseRepo) GetAll(_ context.Context) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Exercise{}
	for _, e := range r.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Exercise{}
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	exercise.UpdatedAt = time.Now().UTC()
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *fakeExerciseRepo) SetMediaKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.MediaKey = key
	r.exercises[id] = e
	return nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.exercises[id]
	return ok, nil
}

func (r *fakeExerciseRepo) IsReferenced(_ context.Context, id primitive.ObjectID) (bool, error) {
	if r.workouts == nil {
		return false, nil
	}
	r.workouts.mu.Lock()
	defer r.workouts.mu.Unlock()
	for _, w := range r.workouts.workouts {
		for _, l := range w.Exercises {
			if l.ExerciseID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// ── In-memory WorkoutRepository ──

// fakeWorkoutRepo keeps lines embedded in their workout, like the Mongo
// implementation, and populates Exercise on reads.
type fakeWorkoutRepo struct {
	mu        sync.Mutex
	workouts  map[primitive.ObjectID]domain.Workout
	exercises *fakeExerciseRepo
}

func newFakeWorkoutRepo(exercises *fakeExerciseRepo) *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: map[primitive.ObjectID]domain.Workout{}, exercises: exercises}
}

func cloneWorkout(w domain.Workout) domain.Workout {
	lines := make([]domain.WorkoutExercise, len(w.Exercises))
	copy(lines, w.Exercises)
	w.Exercises = lines
	return w
}

// populate must be called without r.mu held.
func (r *fakeWorkoutRepo) populate(w domain.Workout) domain.Workout {
	w = cloneWorkout(w)
	for i := range w.Exercises {
		w.Exercises[i].WorkoutID = w.ID
		if e, err := r.exercises.GetByID(context.Background(), w.Exercises[i].ExerciseID); err == nil {
			w.Exercises[i].Exercise = e
		}
	}
	return w
}

func (r *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = time.Now().UTC()
	workout.UpdatedAt = workout.CreatedAt
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}
	for i := range workout.Exercises {
		workout.Exercises[i].ID = primitive.NewObjectID()
		workout.Exercises[i].WorkoutID = workout.ID
	}
	r.workouts[workout.ID] = cloneWorkout(*workout)
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	w, ok := r.workouts[id]
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	populated := r.populate(w)
	return &populated, nil
}

func (r *fakeWorkoutRepo) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.Workout, error) {
	return r.list(func(w domain.Workout) bool { return w.IsAssigned() && *w.AthleteID == athleteID }), nil
}

func (r *fakeWorkoutRepo) GetUnassigned(_ context.Context) ([]domain.Workout, error) {
	return r.list(func(w domain.Workout) bool { return !w.IsAssigned() }), nil
}

func (r *fakeWorkoutRepo) list(keep func(domain.Workout) bool) []domain.Workout {
	r.mu.Lock()
	matched := []domain.Workout{}
	for _, w := range r.workouts {
		if keep(w) {
			matched = append(matched, w)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	for i := range matched {
		matched[i] = r.populate(matched[i])
	}
	return matched
}

func (r *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	w.Name = workout.Name
	w.Date = workout.Date
	w.IsCompleted = workout.IsCompleted
	w.UpdatedAt = time.Now().UTC()
	r.workouts[w.ID] = w
	return nil
}

func (r *fakeWorkoutRepo) SetCompleted(_ context.Context, id primitive.ObjectID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.IsCompleted = completed
	r.workouts[id] = w
	return nil
}

func (r *fakeWorkoutRepo) AssignIfUnassigned(_ context.Context, id, athleteID primitive.ObjectID, coachID *primitive.ObjectID, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.IsAssigned() {
		return false, nil
	}
	w.AthleteID = &athleteID
	w.Date = date
	if coachID != nil {
		c := *coachID
		w.AssignedByCoachID = &c
	}
	r.workouts[id] = w
	return true, nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) DeleteByAthleteID(_ context.Context, athleteID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, w := range r.workouts {
		if w.IsAssigned() && *w.AthleteID == athleteID {
			delete(r.workouts, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutRepo) ClearCoach(_ context.Context, coachID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, w := range r.workouts {
		if w.AssignedByCoachID != nil && *w.AssignedByCoachID == coachID {
			w.AssignedByCoachID = nil
			r.workouts[id] = w
		}
	}
	return nil
}

func (r *fakeWorkoutRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.workouts[id]
	return ok, nil
}

// lineCount counts embedded lines across all workouts.
func (r *fakeWorkoutRepo) lineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.workouts {
		n += len(w.Exercises)
	}
	return n
}

// ── In-memory WorkoutExerciseRepository ──

type fakeLineRepo struct {
	workouts *fakeWorkoutRepo
}

func (r *fakeLineRepo) Add(_ context.Context, line *domain.WorkoutExercise) (primitive.ObjectID, error) {
	r.workouts.mu.Lock()
	defer r.workouts.mu.Unlock()
	w, ok := r.workouts.workouts[line.WorkoutID]
	if !ok {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	line.ID = primitive.NewObjectID()
	w = cloneWorkout(w)
	w.Exercises = append(w.Exercises, *line)
	r.workouts.workouts[w.ID] = w
	return line.ID, nil
}

// find returns the owning workout and the line's index. Callers hold the lock.
func (r *fakeLineRepo) find(id primitive.ObjectID) (domain.Workout, int, bool) {
	for _, w := range r.workouts.workouts {
		for i, l := range w.Exercises {
			if l.ID == id {
				return w, i, true
			}
		}
	}
	return domain.Workout{}, -1, false
}

func (r *fakeLineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	r.workouts.mu.Lock()
	defer r.workouts.mu.Unlock()
	w, i, ok := r.find(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	line := w.Exercises[i]
	line.WorkoutID = w.ID
	return &line, nil
}

func (r *fakeLineRepo) Update(_ context.Context, line *domain.WorkoutExercise) error {
	r.workouts.mu.Lock()
	defer r.workouts.mu.Unlock()
	w, i, ok := r.find(line.ID)
	if !ok {
		return repository.ErrNotFound
	}
	w = cloneWorkout(w)
	w.Exercises[i].Sets = line.Sets
	w.Exercises[i].Reps = line.Reps
	w.Exercises[i].Weight = line.Weight
	w.Exercises[i].Notes = line.Notes
	r.workouts.workouts[w.ID] = w
	return nil
}

func (r *fakeLineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.workouts.mu.Lock()
	defer r.workouts.mu.Unlock()
	w, i, ok := r.find(id)
	if !ok {
		return repository.ErrNotFound
	}
	lines := make([]domain.WorkoutExercise, 0, len(w.Exercises)-1)
	lines = append(lines, w.Exercises[:i]...)
	lines = append(lines, w.Exercises[i+1:]...)
	w.Exercises = lines
	r.workouts.workouts[w.ID] = w
	return nil
}

func (r *fakeLineRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.workouts.mu.Lock()
	defer r.workouts.mu.Unlock()
	_, _, ok := r.find(id)
	return ok, nil
}

// ── In-memory FileStorage ──

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
	failAll error
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	if s.failAll != nil {
		return "", s.failAll
	}
	return "https://media.test/upload/" + objectKey + "?ct=" + contentType, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.failAll != nil {
		return "", s.failAll
	}
	return "https://media.test/download/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// ── Fixture ──

type fixture struct {
	users     *fakeUserRepo
	exercises *fakeExerciseRepo
	workouts  *fakeWorkoutRepo
	lines     *fakeLineRepo
	bus       *events.Bus
	validator *validation.Validator
	tokens    TokenService
}

func newFixture() *fixture {
	exercises := newFakeExerciseRepo()
	workouts := newFakeWorkoutRepo(exercises)
	exercises.workouts = workouts

	tokens, err := NewTokenService("test-secret-at-least-16-bytes", time.Hour, "workout-tracker-test")
	if err != nil {
		panic(err)
	}

	return &fixture{
		users:     newFakeUserRepo(),
		exercises: exercises,
		workouts:  workouts,
		lines:     &fakeLineRepo{workouts: workouts},
		bus:       events.NewBus(nil),
		validator: validation.New(),
		tokens:    tokens,
	}
}

func (f *fixture) authService() AuthService {
	return NewAuthService(f.users, f.tokens, f.bus, f.validator)
}

func (f *fixture) userService() UserService {
	return NewUserService(f.users, f.workouts, f.bus, f.validator)
}

func (f *fixture) workoutService() WorkoutService {
	return NewWorkoutService(f.users, f.exercises, f.workouts, f.lines, f.bus, f.validator)
}

// seedUser stores a user directly, bypassing the services.
func (f *fixture) seedUser(username string, role domain.Role) primitive.ObjectID {
	id, err := f.users.Create(context.Background(), &domain.User{
		Name:      username,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		panic(err)
	}
	return id
}

func (f *fixture) seedExercise(name string, group domain.MuscleGroup) primitive.ObjectID {
	id, err := f.exercises.Create(context.Background(), &domain.Exercise{Name: name, MuscleGroup: group})
	if err != nil {
		panic(err)
	}
	return id
}
