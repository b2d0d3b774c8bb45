package models

import "time"

// FeeLetter is an uploaded fee letter document. The file payload lives in
// the object store under S3ObjectID; only metadata is kept here.
type FeeLetter struct {
	LetterID uint64 `gorm:"primaryKey" json:"letterId"`
	// Comment is the display note; it defaults to the original file name
	// when the uploader leaves it blank.
	Comment string `gorm:"size:255;not null" json:"comment"`
	// FileName is the original upload file name, used for downloads.
	FileName string `gorm:"size:255;not null" json:"fileName"`
	// UploadUserName is the display name of the uploading user.
	UploadUserName string `gorm:"size:100;not null" json:"uploadUserName"`
	// S3ObjectID keys the stored payload.
	S3ObjectID string    `gorm:"column:s3_object_id;size:64;not null;uniqueIndex" json:"s3ObjectId"`
	CreatedBy  string    `gorm:"size:100" json:"createdBy"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"lastUpdatedDate"`
}

// TableName specifies the database table name for the FeeLetter model.
func (FeeLetter) TableName() string {
	return "fee_letters"
}
