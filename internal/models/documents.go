package models

// UploadedFile - ссылка на загруженный файл
type UploadedFile struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// UploadedDocuments - отсутствующий ключ или nil означает "не загружен"
type UploadedDocuments map[DocumentKey]*UploadedFile

var documentsByRole = map[UserRole][]DocumentKey{
	UserRolePharmacist: {DocumentKeyPSZ, DocumentKeyHPA, DocumentKeyCV},
	UserRolePharmacy:   {DocumentKeyPharmacyHPA, DocumentKeyPharmacyMCAZ},
}

// DocumentsForRole возвращает обязательные документы для роли
func DocumentsForRole(role UserRole) []DocumentKey {
	keys := documentsByRole[role]
	out := make([]DocumentKey, len(keys))
	copy(out, keys)
	return out
}

func (d UploadedDocuments) IsUploaded(key DocumentKey) bool {
	return d[key] != nil
}

// CompleteFor - все обязательные для роли документы загружены
func (d UploadedDocuments) CompleteFor(role UserRole) bool {
	keys := documentsByRole[role]
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if !d.IsUploaded(k) {
			return false
		}
	}
	return true
}

// UploadedCount - сколько документов реально загружено
func (d UploadedDocuments) UploadedCount() int {
	n := 0
	for _, f := range d {
		if f != nil {
			n++
		}
	}
	return n
}

func (d UploadedDocuments) Clone() UploadedDocuments {
	if d == nil {
		return nil
	}
	out := make(UploadedDocuments, len(d))
	for k, v := range d {
		if v == nil {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}
