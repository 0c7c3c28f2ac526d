package model

import (
	"time"

	"gorm.io/datatypes"
)

// ========== 用户角色 ==========
const (
	RoleStudent   = "student"
	RoleCollege   = "college"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	UserUUID  string    `gorm:"column:user_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID"`
	Name      string    `gorm:"column:name;type:varchar(128);not null;comment:姓名"`
	Email     string    `gorm:"column:email;type:varchar(256);uniqueIndex;not null;comment:邮箱"`
	Role      string    `gorm:"column:role;type:varchar(16);default:student;comment:角色：student/college/recruiter/admin"`
	College   string    `gorm:"column:college;type:varchar(256);index;comment:所属院校"`
	IsActive  bool      `gorm:"column:is_active;type:boolean;default:true;comment:是否活跃"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// PlatformConnection 用户↔外部平台绑定关系
// 不变式：cached_stats 非空时 last_synced_at 必非空——缓存统计必须带抓取时间戳，
// 否则属于无法判断新鲜度的假数据，写入路径上直接杜绝
type PlatformConnection struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	UserID       uint64         `gorm:"column:user_id;type:bigint;not null;uniqueIndex:uq_user_platform;comment:关联用户ID"`
	PlatformID   string         `gorm:"column:platform_id;type:varchar(32);not null;uniqueIndex:uq_user_platform;comment:平台标识（小写）"`
	Username     string         `gorm:"column:username;type:varchar(128);not null;comment:平台用户名（绑定时给的原始值）"`
	ProfileURL   string         `gorm:"column:profile_url;type:varchar(512);comment:主页URL（可选）"`
	LinkedAt     time.Time      `gorm:"column:linked_at;type:timestamp;not null;comment:绑定时间"`
	LastSyncedAt *time.Time     `gorm:"column:last_synced_at;type:timestamp;comment:最近一次同步成功时间"`
	IsActive     bool           `gorm:"column:is_active;type:boolean;default:true;comment:是否参与同步"`
	CachedStats  datatypes.JSON `gorm:"column:cached_stats;type:jsonb;comment:最近一次同步的归一化统计"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// StudentStatsRecord 跨平台聚合统计快照（每用户至多一条，整条覆盖写）
type StudentStatsRecord struct {
	ID                   uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	UserID               uint64    `gorm:"column:user_id;type:bigint;uniqueIndex;not null;comment:关联用户ID"`
	TotalProblems        int       `gorm:"column:total_problems;type:int;default:0;comment:总解题数"`
	EasyProblems         int       `gorm:"column:easy_problems;type:int;default:0;comment:简单题数"`
	MediumProblems       int       `gorm:"column:medium_problems;type:int;default:0;comment:中等题数"`
	HardProblems         int       `gorm:"column:hard_problems;type:int;default:0;comment:困难题数"`
	GithubContributions  int       `gorm:"column:github_contributions;type:int;default:0;comment:GitHub贡献数"`
	ContestsParticipated int       `gorm:"column:contests_participated;type:int;default:0;comment:参赛场次"`
	Rating               int       `gorm:"column:rating;type:int;default:0;comment:竞赛Rating（多平台取最大）"`
	ComputedAt           time.Time `gorm:"column:computed_at;type:timestamp;not null;comment:聚合计算时间"`
	UpdatedAt            time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// PageView 页面访问记录（用量分析）
type PageView struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Path      string    `gorm:"column:path;type:varchar(256);not null;index;comment:页面路径"`
	VisitorID string    `gorm:"column:visitor_id;type:varchar(64);index;comment:访客标识"`
	Referrer  string    `gorm:"column:referrer;type:varchar(512);comment:来源页"`
	UserAgent string    `gorm:"column:user_agent;type:varchar(512);comment:UA"`
	ViewedAt  time.Time `gorm:"column:viewed_at;type:timestamp;not null;index;comment:访问时间"`
}

func (User) TableName() string               { return "users" }
func (PlatformConnection) TableName() string { return "platform_connections" }
func (StudentStatsRecord) TableName() string { return "student_stats" }
func (PageView) TableName() string           { return "page_views" }
