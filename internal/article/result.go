// Package article 抓取文章页面，提取正文、预览图和标题。
package article

// Status 抓取结果类型。
type Status int

const (
	// StatusOK 页面抓取成功，提取均未报错（字段仍可能为空）。
	StatusOK Status = iota
	// StatusTimeout 请求超时。
	StatusTimeout
	// StatusRequestError 网络错误或非 2xx 状态码。
	StatusRequestError
	// StatusExtractError 页面已取得，但正文或元信息提取失败。
	StatusExtractError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusRequestError:
		return "request_error"
	case StatusExtractError:
		return "extract_error"
	default:
		return "unknown"
	}
}

// Result 一次补全的结果。空字符串表示该字段缺失。
type Result struct {
	Content  string
	ImageURL string
	Title    string
	Status   Status
	Err      error
}

// HasContent 是否提取到正文。
func (r Result) HasContent() bool { return r.Content != "" }

// HasImage 是否找到预览图。
func (r Result) HasImage() bool { return r.ImageURL != "" }
