package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ErrNoImageData は応答に画像データが含まれていない場合に返されます。
var ErrNoImageData = errors.New("no image data in response")

// ImageResponse は生成された画像のバイト列と MIME タイプです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// ExtractImage は最初の候補から最初のインライン画像を取り出します。
func ExtractImage(resp *Response) (*ImageResponse, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("%w: 候補がありません", ErrNoImageData)
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = http.DetectContentType(part.InlineData.Data)
			}
			return &ImageResponse{Data: part.InlineData.Data, MimeType: mimeType}, nil
		}
	}

	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w: finish_reason=%s", ErrNoImageData, candidate.FinishReason)
	}
	return nil, ErrNoImageData
}

// ImagePart は画像バイト列をインラインデータのパートに変換します。
// 画像として判別できないデータの場合は nil を返します。
func ImagePart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}
