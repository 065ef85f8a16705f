package storage

import (
	"strings"

	"github.com/google/uuid"
)

func PostFolder(postID uuid.UUID) string {
	return "posts/" + postID.String()
}

func ProfileFolder(userID uuid.UUID) string {
	return "users/" + userID.String() + "/profile"
}

func IDDocumentsFolder(userID uuid.UUID) string {
	return "users/" + userID.String() + "/id-documents"
}

// NewObjectPath returns a fresh object path inside folder.
func NewObjectPath(folder string, ext string) string {
	return folder + "/" + uuid.NewString() + "." + ext
}

// IDDocumentOwner returns the user whose ID documents folder holds
// objectPath.
func IDDocumentOwner(objectPath string) (uuid.UUID, bool) {
	parts := strings.Split(CleanPath(objectPath), "/")
	if len(parts) < 4 || parts[0] != "users" || parts[2] != "id-documents" {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
