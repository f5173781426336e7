package file

import (
	domain "file-vault-api/internal/domain/file"
)

func fromDBModel(model *FileRecord) *domain.FileRecord {
	fr := &domain.FileRecord{
		UUID:      model.UUID,
		OwnerUUID: model.OwnerUUID,

		Name:       model.Name,
		Kind:       domain.Kind(model.Kind),
		ParentUUID: model.ParentUUID,
		Public:     model.Public,
		ThumbState: domain.ThumbState(model.ThumbState),

		CreatedAt: model.CreatedAt,
	}
	if model.Locator != nil {
		fr.Locator = *model.Locator
	}

	return fr
}

func fromDBModels(models *FileRecords) domain.FileRecords {
	frs := make(domain.FileRecords, len(*models))
	for idx, fr := range *models {
		frs[idx] = fromDBModel(fr)
	}

	return frs
}
