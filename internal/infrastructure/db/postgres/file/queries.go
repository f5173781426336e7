package file

const (
	SelectFileByUUID = `
		SELECT id, uuid, owner_uuid, name, kind, parent_uuid, public, locator, thumb_state, created_at
		FROM files
		WHERE uuid = $1
	`
	SelectFolderChildren = `
		SELECT id, uuid, owner_uuid, name, kind, parent_uuid, public, locator, thumb_state, created_at
		FROM files
		WHERE owner_uuid = $1 AND parent_uuid = $2
		ORDER BY id
		LIMIT 20 OFFSET ( ($3 - 1) * 20 )
	`
	SelectRootChildren = `
		SELECT id, uuid, owner_uuid, name, kind, parent_uuid, public, locator, thumb_state, created_at
		FROM files
		WHERE owner_uuid = $1 AND parent_uuid IS NULL
		ORDER BY id
		LIMIT 20 OFFSET ( ($2 - 1) * 20 )
	`
	InsertFile = `
		INSERT INTO files (owner_uuid, name, kind, parent_uuid, public, locator, thumb_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING
		  id, uuid, owner_uuid, name, kind, parent_uuid, public, locator, thumb_state, created_at
	`
	UpdateFilePublic = `
		UPDATE files
		SET public = $2
		WHERE uuid = $1
	`
	UpdateFileThumbState = `
		UPDATE files
		SET thumb_state = $2
		WHERE uuid = $1
	`
)
