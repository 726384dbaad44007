package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Completer 定义通用的文本补全接口
type Completer interface {
	Complete(ctx context.Context, req *Request) (string, error)
	Close() error
}

// Request 通用补全请求
type Request struct {
	Messages    []*schema.Message // system + user
	Temperature *float32 // nil 时使用服务端默认值
	MaxTokens   int
}

// split 拆分出 system 指令与其余用户内容
func (r *Request) split() (system string, user []string) {
	for _, m := range r.Messages {
		if m.Role == schema.System {
			system = m.Content
			continue
		}
		user = append(user, m.Content)
	}
	return system, user
}
