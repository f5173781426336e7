package file

import (
	domain "file-vault-api/internal/domain/file"
)

func ToResponseFileRecord(fr domain.FileRecord) FileRecord {
	return FileRecord{
		UUID:       fr.UUID,
		Name:       fr.Name,
		Kind:       string(fr.Kind),
		ParentUUID: fr.ParentUUID,
		Public:     fr.Public,
		ThumbState: string(fr.ThumbState),
		CreatedAt:  fr.CreatedAt,
	}
}

func ToResponseFileRecords(frs domain.FileRecords) FileRecords {
	out := make(FileRecords, len(frs))
	for idx, fr := range frs {
		out[idx] = ToResponseFileRecord(*fr)
	}

	return out
}
