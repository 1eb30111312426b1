package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/repositories"
	"go-tasks-api/backend/internal/storage"
)

// fakeHasher は決定的なSecretHasherです。
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Verify(plaintext, digest string) bool {
	return digest == "hashed:"+plaintext
}

// fakeTaskRepo はインメモリのTaskRepositoryです。
type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]models.Task

	saveErr error
	pingErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{nextID: 1, tasks: make(map[int]models.Task)}
}

func cloneTask(t models.Task) *models.Task {
	out := t
	if t.PhotoURL != nil {
		v := *t.PhotoURL
		out.PhotoURL = &v
	}
	if t.PhotoPasswordHash != nil {
		v := *t.PhotoPasswordHash
		out.PhotoPasswordHash = &v
	}
	return &out
}

func (r *fakeTaskRepo) FindAll() ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) FindByID(id int) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *fakeTaskRepo) FindAllByPhotoURL(photoURL string) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*models.Task{}
	for _, t := range r.tasks {
		if t.PhotoURL != nil && *t.PhotoURL == photoURL {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeTaskRepo) ExistsByID(id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tasks[id]
	return ok, nil
}

func (r *fakeTaskRepo) Save(t *models.Task) (*models.Task, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
		t.CreatedAt = now
	} else if _, ok := r.tasks[t.ID]; !ok {
		return nil, repositories.ErrTaskNotFound
	}
	t.UpdatedAt = now
	r.tasks[t.ID] = *cloneTask(*t)
	return cloneTask(*t), nil
}

func (r *fakeTaskRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return repositories.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) Ping() error {
	return r.pingErr
}

var errFakeDB = errors.New("fake database failure")

type testEnv struct {
	repo    *fakeTaskRepo
	uploads *storage.UploadDir
	tasks   *TaskService
	photos  *PhotoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uploads, err := storage.NewUploadDir(t.TempDir() + "/uploads")
	require.NoError(t, err)

	repo := newFakeTaskRepo()
	return &testEnv{
		repo:    repo,
		uploads: uploads,
		tasks:   NewTaskService(repo, uploads, fakeHasher{}),
		photos:  NewPhotoService(repo, uploads, fakeHasher{}),
	}
}

func photo(name, content string) *models.Upload {
	return &models.Upload{Filename: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}
