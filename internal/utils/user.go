package utils

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// AIMention 评论中出现该标记时触发 AI 回复
const AIMention = "@ai"

var (
	aliasAdjectives = []string{
		"Brave", "Calm", "Clever", "Curious", "Eager", "Fair", "Gentle", "Honest",
		"Keen", "Lively", "Loyal", "Mindful", "Noble", "Quiet", "Steady", "Swift",
	}
	aliasNouns = []string{
		"Banyan", "Crane", "Falcon", "Heron", "Lotus", "Mango", "Neem", "Otter",
		"Peacock", "River", "Sparrow", "Tiger", "Valley", "Willow",
	}
)

// RandomAlias 生成公民的匿名显示名，例如 SteadyHeron482
func RandomAlias() string {
	adj := aliasAdjectives[rand.IntN(len(aliasAdjectives))]
	noun := aliasNouns[rand.IntN(len(aliasNouns))]
	return fmt.Sprintf("%s%s%d", adj, noun, 10+rand.IntN(9990))
}

// MentionsAI 判断内容是否召唤 AI
func MentionsAI(content string) bool {
	return strings.Contains(strings.ToLower(content), AIMention)
}
