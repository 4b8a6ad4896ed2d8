package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"

	"floralie_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

// UploadProductImage envoie l'image d'un produit dans le bucket MinIO et
// retourne son URL publique.
func UploadProductImage(ctx context.Context, productID string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := fmt.Sprintf("products/%s.jpg", productID)

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://%s/%s/%s", os.Getenv("MINIO_ENDPOINT"), bucket, objectName)
	return url, nil
}
