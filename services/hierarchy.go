package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"drivebox/models"
)

// DeleteFileResult 删除文件的两段式结果
type DeleteFileResult string

const (
	FileMovedToTrash DeleteFileResult = "moved_to_trash"
	FileDeleted      DeleteFileResult = "deleted"
)

// FileFilter 文件列表过滤条件
//
// FolderID 指定时只返回该文件夹下的文件；RootOnly 只返回未归入
// 任何文件夹的文件；两者都未设置时返回所有文件夹的文件。
type FileFilter struct {
	FolderID  *uint
	RootOnly  bool
	ShowTrash bool
}

// CreateFileInput 文件元数据入参，字节已由对象存储落盘
type CreateFileInput struct {
	Name        string
	URL         string
	ObjectKey   string
	ContentType string
	Size        int64
	FolderID    *uint
}

// HierarchyService 文件夹/文件层级与回收站状态管理
//
// 所有操作以所有者标识为边界："不存在"与"非本人所有"对调用方
// 均表现为 ErrNotFound，不泄露他人资源的存在性。
type HierarchyService struct {
	db      *gorm.DB
	objects ObjectStorage
}

func NewHierarchyService(db *gorm.DB, objects ObjectStorage) *HierarchyService {
	return &HierarchyService{
		db:      db,
		objects: objects,
	}
}

// CreateFolder 创建文件夹，名称去除首尾空白后入库
func (s *HierarchyService) CreateFolder(owner, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: 文件夹名称不能为空", ErrInvalidInput)
	}

	folder := &models.Folder{
		Name:   name,
		UserID: owner,
	}
	if err := s.db.Create(folder).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create folder: %v", ErrPersistence, err)
	}
	return folder, nil
}

// ListFolders 列出所有者的文件夹，按创建时间排序
func (s *HierarchyService) ListFolders(owner string) ([]models.Folder, error) {
	var folders []models.Folder
	if err := s.db.Where("user_id = ?", owner).Order("created_at asc").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list folders: %v", ErrPersistence, err)
	}
	return folders, nil
}

// RenameFolder 重命名文件夹，创建时间保持不变
func (s *HierarchyService) RenameFolder(owner string, folderID uint, newName string) (*models.Folder, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: 文件夹名称不能为空", ErrInvalidInput)
	}

	var folder models.Folder
	if err := s.db.Where("id = ? AND user_id = ?", folderID, owner).First(&folder).Error; err != nil {
		return nil, s.lookupError(err)
	}

	if err := s.db.Model(&folder).Update("name", newName).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to rename folder: %v", ErrPersistence, err)
	}
	folder.Name = newName
	return &folder, nil
}

// DeleteFolder 删除文件夹并级联清理其下文件
//
// 先尽力释放每个文件的存储对象（失败只记日志），再在同一事务内
// 删除文件行和文件夹行，保证不留下指向已删除文件夹的元数据。
func (s *HierarchyService) DeleteFolder(ctx context.Context, owner string, folderID uint) error {
	var folder models.Folder
	if err := s.db.Where("id = ? AND user_id = ?", folderID, owner).First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var files []models.File
	if err := s.db.Where("folder_id = ? AND user_id = ?", folderID, owner).Find(&files).Error; err != nil {
		return fmt.Errorf("%w: failed to list folder files: %v", ErrPersistence, err)
	}

	// 释放存储对象，失败不阻断元数据清理
	for _, file := range files {
		if file.ObjectKey == "" {
			continue
		}
		if err := s.objects.Delete(ctx, file.ObjectKey); err != nil {
			log.Printf("释放存储对象失败 (file=%d, key=%s): %v", file.ID, file.ObjectKey, err)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id = ? AND user_id = ?", folderID, owner).Delete(&models.File{}).Error; err != nil {
			return err
		}
		return tx.Delete(&folder).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete folder: %v", ErrPersistence, err)
	}
	return nil
}

// CreateFile 写入文件元数据，此时字节应已由对象存储落盘
func (s *HierarchyService) CreateFile(owner string, input CreateFileInput) (*models.File, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: 文件名不能为空", ErrInvalidInput)
	}
	if input.URL == "" {
		return nil, fmt.Errorf("%w: 文件URL不能为空", ErrInvalidInput)
	}
	if input.Size < 0 {
		return nil, fmt.Errorf("%w: 文件大小不能为负数", ErrInvalidInput)
	}

	// 目标文件夹必须属于同一所有者，FK 冲突以领域错误暴露
	if input.FolderID != nil {
		var folder models.Folder
		err := s.db.Where("id = ? AND user_id = ?", *input.FolderID, owner).First(&folder).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 文件夹不存在", ErrInvalidInput)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	file := &models.File{
		Name:        input.Name,
		URL:         input.URL,
		ObjectKey:   input.ObjectKey,
		ContentType: input.ContentType,
		Size:        input.Size,
		FolderID:    input.FolderID,
		UserID:      owner,
		IsTrash:     false,
	}
	if err := s.db.Create(file).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create file: %v", ErrPersistence, err)
	}
	return file, nil
}

// ListFiles 列出文件，始终按所有者和回收站状态过滤
func (s *HierarchyService) ListFiles(owner string, filter FileFilter) ([]models.File, error) {
	query := s.db.Where("user_id = ? AND is_trash = ?", owner, filter.ShowTrash)
	if filter.FolderID != nil {
		query = query.Where("folder_id = ?", *filter.FolderID)
	} else if filter.RootOnly {
		query = query.Where("folder_id IS NULL")
	}

	var files []models.File
	if err := query.Order("created_at asc").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list files: %v", ErrPersistence, err)
	}
	return files, nil
}

// GetFile 按所有者作用域获取单个文件
func (s *HierarchyService) GetFile(owner string, fileID uint) (*models.File, error) {
	var file models.File
	if err := s.db.Where("id = ? AND user_id = ?", fileID, owner).First(&file).Error; err != nil {
		return nil, s.lookupError(err)
	}
	return &file, nil
}

// RenameFile 只更新逻辑文件名，不触碰 URL 和存储对象
func (s *HierarchyService) RenameFile(owner string, fileID uint, newName string) (*models.File, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: 文件名不能为空", ErrInvalidInput)
	}

	var file models.File
	if err := s.db.Where("id = ? AND user_id = ?", fileID, owner).First(&file).Error; err != nil {
		return nil, s.lookupError(err)
	}

	if err := s.db.Model(&file).Update("name", newName).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to rename file: %v", ErrPersistence, err)
	}
	file.Name = newName
	return &file, nil
}

// SetTrash 移入/移出回收站，重复设置同一状态为幂等操作
func (s *HierarchyService) SetTrash(owner string, fileID uint, trash bool) (*models.File, error) {
	var file models.File
	if err := s.db.Where("id = ? AND user_id = ?", fileID, owner).First(&file).Error; err != nil {
		return nil, s.lookupError(err)
	}

	if file.IsTrash == trash {
		return &file, nil
	}

	if err := s.db.Model(&file).Update("is_trash", trash).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to update trash state: %v", ErrPersistence, err)
	}
	file.IsTrash = trash
	return &file, nil
}

// DeleteFile 两段式删除：Active 文件移入回收站，回收站文件永久删除
//
// 不存在从 Active 直接永久删除的路径，必须先经过回收站。
func (s *HierarchyService) DeleteFile(ctx context.Context, owner string, fileID uint) (DeleteFileResult, error) {
	var file models.File
	if err := s.db.Where("id = ? AND user_id = ?", fileID, owner).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !file.IsTrash {
		if err := s.db.Model(&file).Update("is_trash", true).Error; err != nil {
			return "", fmt.Errorf("%w: failed to move file to trash: %v", ErrPersistence, err)
		}
		return FileMovedToTrash, nil
	}

	// 永久删除：先尽力释放存储对象，元数据删除不受其失败影响
	if file.ObjectKey != "" {
		if err := s.objects.Delete(ctx, file.ObjectKey); err != nil {
			log.Printf("释放存储对象失败 (file=%d, key=%s): %v", file.ID, file.ObjectKey, err)
		}
	}

	if err := s.db.Delete(&file).Error; err != nil {
		return "", fmt.Errorf("%w: failed to delete file: %v", ErrPersistence, err)
	}
	return FileDeleted, nil
}

func (s *HierarchyService) lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
