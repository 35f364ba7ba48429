package thread

import (
	"civicpulse/internal/models"
)

// IdentityKind 评论作者的身份类别
type IdentityKind string

const (
	KindSystem   IdentityKind = "system"
	KindOfficial IdentityKind = "official"
	KindCitizen  IdentityKind = "citizen"
)

const (
	SystemName      = "AI Bot"
	SystemRole      = "AI"
	CitizenFallback = "Citizen"
)

// Identity 作者身份。Kind 决定哪些字段有意义：
// official 有 Role 和 Name（候选人姓名），citizen 只有 Name（匿名别名），system 固定为 AI Bot。
type Identity struct {
	Kind IdentityKind `json:"kind"`
	Name string       `json:"name"`
	Role string       `json:"role,omitempty"`
}

func (i Identity) IsOfficial() bool { return i.Kind == KindOfficial }

func systemIdentity() Identity {
	return Identity{Kind: KindSystem, Name: SystemName, Role: SystemRole}
}

func officialIdentity(r models.Representative) Identity {
	return Identity{Kind: KindOfficial, Name: r.CandidateName, Role: r.Type}
}

func citizenIdentity(alias string) Identity {
	if alias == "" {
		alias = CitizenFallback
	}
	return Identity{Kind: KindCitizen, Name: alias, Role: models.RoleCitizen}
}

// ResolveIdentity 按优先级解析作者：AI 生成 > 代表名册 > 公民别名 > "Citizen"
func ResolveIdentity(c models.PolicyComment, roster map[string]models.Representative, aliases map[string]string) Identity {
	if c.AIGenerated {
		return systemIdentity()
	}
	if r, ok := roster[c.UserID]; ok {
		return officialIdentity(r)
	}
	return citizenIdentity(aliases[c.UserID])
}

// RosterByUser 以 user_id 索引代表名册，同一用户出现多次时取第一条
func RosterByUser(reps []models.Representative) map[string]models.Representative {
	out := make(map[string]models.Representative, len(reps))
	for _, r := range reps {
		if _, seen := out[r.UserID]; !seen {
			out[r.UserID] = r
		}
	}
	return out
}
