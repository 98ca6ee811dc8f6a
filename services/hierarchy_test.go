package services

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"drivebox/models"
)

// fakeObjectStorage 记录删除调用，可按 key 注入失败
type fakeObjectStorage struct {
	deleted  []string
	failKeys map[string]bool
}

func (f *fakeObjectStorage) Put(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*StoredObject, error) {
	return &StoredObject{Key: "fake/" + filename, URL: "/fake/" + filename, Name: filename, Size: size}, nil
}

func (f *fakeObjectStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return []byte("fake"), nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	if f.failKeys[key] {
		return fmt.Errorf("%w: simulated delete failure", ErrStorage)
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStorage) PresignURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

func setupHierarchy(t *testing.T) (*HierarchyService, *fakeObjectStorage) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Folder{}, &models.File{}))

	objects := &fakeObjectStorage{failKeys: make(map[string]bool)}
	return NewHierarchyService(db, objects), objects
}

func TestCreateFolder_TrimsName(t *testing.T) {
	s, _ := setupHierarchy(t)

	folder, err := s.CreateFolder("u1", " Docs ")
	require.NoError(t, err)
	assert.Equal(t, "Docs", folder.Name)
	assert.NotZero(t, folder.ID)
}

func TestCreateFolder_EmptyName_InvalidInput(t *testing.T) {
	s, _ := setupHierarchy(t)

	_, err := s.CreateFolder("u1", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreateFolder("u1", "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListFolders_EmptyIsNotError(t *testing.T) {
	s, _ := setupHierarchy(t)

	folders, err := s.ListFolders("u1")
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestOwnershipIsolation(t *testing.T) {
	s, _ := setupHierarchy(t)

	folderA, err := s.CreateFolder("alice", "Photos")
	require.NoError(t, err)
	_, err = s.CreateFile("alice", CreateFileInput{Name: "cat.jpg", URL: "/uploads/cat.jpg", Size: 10, FolderID: &folderA.ID})
	require.NoError(t, err)

	folders, err := s.ListFolders("bob")
	require.NoError(t, err)
	assert.Empty(t, folders)

	files, err := s.ListFiles("bob", FileFilter{})
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = s.GetFile("bob", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRename_NotOwned_IndistinguishableFromAbsent(t *testing.T) {
	s, _ := setupHierarchy(t)

	folder, err := s.CreateFolder("alice", "Docs")
	require.NoError(t, err)
	file, err := s.CreateFile("alice", CreateFileInput{Name: "a.txt", URL: "/uploads/a.txt", Size: 1})
	require.NoError(t, err)

	// 他人的资源
	_, errNotOwned := s.RenameFolder("bob", folder.ID, "X")
	// 不存在的资源
	_, errAbsent := s.RenameFolder("bob", 9999, "X")
	require.ErrorIs(t, errNotOwned, ErrNotFound)
	require.Equal(t, errAbsent, errNotOwned)

	_, errNotOwned = s.RenameFile("bob", file.ID, "x.txt")
	_, errAbsent = s.RenameFile("bob", 9999, "x.txt")
	require.ErrorIs(t, errNotOwned, ErrNotFound)
	require.Equal(t, errAbsent, errNotOwned)
}

func TestRenameFile_MetadataOnly(t *testing.T) {
	s, objects := setupHierarchy(t)

	file, err := s.CreateFile("u1", CreateFileInput{Name: "report.pdf", URL: "/uploads/k1", ObjectKey: "k1", Size: 5})
	require.NoError(t, err)

	renamed, err := s.RenameFile("u1", file.ID, "summary")
	require.NoError(t, err)
	assert.Equal(t, "summary", renamed.Name)
	assert.Equal(t, file.URL, renamed.URL)
	assert.Equal(t, file.ObjectKey, renamed.ObjectKey)
	assert.Empty(t, objects.deleted)
}

func TestDeleteFile_TwoStepStateMachine(t *testing.T) {
	s, objects := setupHierarchy(t)
	ctx := context.Background()

	file, err := s.CreateFile("u1", CreateFileInput{Name: "a.txt", URL: "/uploads/k1", ObjectKey: "k1", Size: 1})
	require.NoError(t, err)

	// 第一次删除：移入回收站，行保留
	result, err := s.DeleteFile(ctx, "u1", file.ID)
	require.NoError(t, err)
	assert.Equal(t, FileMovedToTrash, result)
	assert.Empty(t, objects.deleted)

	trashed, err := s.ListFiles("u1", FileFilter{ShowTrash: true})
	require.NoError(t, err)
	require.Len(t, trashed, 1)

	active, err := s.ListFiles("u1", FileFilter{ShowTrash: false})
	require.NoError(t, err)
	assert.Empty(t, active)

	// 第二次删除：永久删除并释放对象
	result, err = s.DeleteFile(ctx, "u1", file.ID)
	require.NoError(t, err)
	assert.Equal(t, FileDeleted, result)
	assert.Equal(t, []string{"k1"}, objects.deleted)

	trashed, err = s.ListFiles("u1", FileFilter{ShowTrash: true})
	require.NoError(t, err)
	assert.Empty(t, trashed)

	_, err = s.DeleteFile(ctx, "u1", file.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetTrash_RoundTripRestoresFile(t *testing.T) {
	s, _ := setupHierarchy(t)

	folder, err := s.CreateFolder("u1", "Docs")
	require.NoError(t, err)
	before, err := s.CreateFile("u1", CreateFileInput{Name: "a.txt", URL: "/uploads/k1", ObjectKey: "k1", Size: 42, FolderID: &folder.ID})
	require.NoError(t, err)

	_, err = s.SetTrash("u1", before.ID, true)
	require.NoError(t, err)
	after, err := s.SetTrash("u1", before.ID, false)
	require.NoError(t, err)

	assert.False(t, after.IsTrash)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.URL, after.URL)
	assert.Equal(t, before.Size, after.Size)
	require.NotNil(t, after.FolderID)
	assert.Equal(t, *before.FolderID, *after.FolderID)
	assert.WithinDuration(t, before.CreatedAt, after.CreatedAt, time.Second)
}

func TestSetTrash_Idempotent(t *testing.T) {
	s, _ := setupHierarchy(t)

	file, err := s.CreateFile("u1", CreateFileInput{Name: "a.txt", URL: "/uploads/k1", Size: 1})
	require.NoError(t, err)

	first, err := s.SetTrash("u1", file.ID, true)
	require.NoError(t, err)
	second, err := s.SetTrash("u1", file.ID, true)
	require.NoError(t, err)
	assert.Equal(t, first.IsTrash, second.IsTrash)
	assert.True(t, second.IsTrash)
}

func TestDeleteFolder_CascadesEvenIfObjectReleaseFails(t *testing.T) {
	s, objects := setupHierarchy(t)
	ctx := context.Background()

	folder, err := s.CreateFolder("u1", "Docs")
	require.NoError(t, err)
	x, err := s.CreateFile("u1", CreateFileInput{Name: "x.txt", URL: "/uploads/kx", ObjectKey: "kx", Size: 1, FolderID: &folder.ID})
	require.NoError(t, err)
	y, err := s.CreateFile("u1", CreateFileInput{Name: "y.txt", URL: "/uploads/ky", ObjectKey: "ky", Size: 1, FolderID: &folder.ID})
	require.NoError(t, err)

	// x 的对象释放失败，整体删除仍需完成
	objects.failKeys["kx"] = true

	require.NoError(t, s.DeleteFolder(ctx, "u1", folder.ID))

	_, err = s.GetFile("u1", x.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetFile("u1", y.ID)
	require.ErrorIs(t, err, ErrNotFound)

	folders, err := s.ListFolders("u1")
	require.NoError(t, err)
	assert.Empty(t, folders)

	assert.Equal(t, []string{"ky"}, objects.deleted)
}

func TestDeleteFolder_NotOwned_NotFound(t *testing.T) {
	s, _ := setupHierarchy(t)
	ctx := context.Background()

	folder, err := s.CreateFolder("alice", "Docs")
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteFolder(ctx, "bob", folder.ID), ErrNotFound)

	folders, err := s.ListFolders("alice")
	require.NoError(t, err)
	assert.Len(t, folders, 1)
}

func TestCreateFile_CrossOwnerFolderRejected(t *testing.T) {
	s, _ := setupHierarchy(t)

	folder, err := s.CreateFolder("alice", "Docs")
	require.NoError(t, err)

	_, err = s.CreateFile("bob", CreateFileInput{Name: "a.txt", URL: "/uploads/k1", Size: 1, FolderID: &folder.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	files, err := s.ListFiles("alice", FileFilter{FolderID: &folder.ID})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreateFile_Validation(t *testing.T) {
	s, _ := setupHierarchy(t)

	_, err := s.CreateFile("u1", CreateFileInput{Name: "", URL: "/uploads/k1", Size: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreateFile("u1", CreateFileInput{Name: "a.txt", URL: "", Size: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreateFile("u1", CreateFileInput{Name: "a.txt", URL: "/uploads/k1", Size: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListFiles_FolderRootAndAllModes(t *testing.T) {
	s, _ := setupHierarchy(t)

	folder, err := s.CreateFolder("u1", "Docs")
	require.NoError(t, err)
	_, err = s.CreateFile("u1", CreateFileInput{Name: "in.txt", URL: "/uploads/k1", Size: 1, FolderID: &folder.ID})
	require.NoError(t, err)
	_, err = s.CreateFile("u1", CreateFileInput{Name: "root.txt", URL: "/uploads/k2", Size: 1})
	require.NoError(t, err)

	all, err := s.ListFiles("u1", FileFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inFolder, err := s.ListFiles("u1", FileFilter{FolderID: &folder.ID})
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "in.txt", inFolder[0].Name)

	rootOnly, err := s.ListFiles("u1", FileFilter{RootOnly: true})
	require.NoError(t, err)
	require.Len(t, rootOnly, 1)
	assert.Equal(t, "root.txt", rootOnly[0].Name)
}
