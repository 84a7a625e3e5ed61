package i18n

// Pack carries every user-visible message for one display language.
type Pack struct {
	Code string

	Welcome           string
	CurrentPrefix     string
	CurrentDomains    string
	AvailableCommands string

	UnableGetUser string
	NoPermission  string
	NotConfigured string

	CreateSuccess   string
	CreateFailed    string
	AddressLabel    string
	PasswordLabel   string
	CredentialLabel string

	InputCredential string
	InputAddress    string
	BindSuccess     string
	BindFailed      string
	UnbindSuccess   string
	UnbindFailed    string
	NotBound        string
	DeleteSuccess   string
	DeleteFailed    string

	AddressList        string
	GetAddressFailed   string
	CleanSuccess       string
	CleanFailed        string
	CurrentAddressList string

	LangDisabled   string
	LangSetSuccess string
	CurrentLang    string
	SelectLang     string

	NotBoundAddress string
	InvalidAddress  string
	NoMoreMail      string
	GetMailFailed   string
	PrevBtn         string
	NextBtn         string
	ViewMailBtn     string
	TooLong         string
	NoSender        string
	ParseFailed     string

	TopicOnly        string
	TopicIDLabel     string
	TopicPushEnabled string
}

var packZH = Pack{
	Code: "zh",

	Welcome:           "欢迎使用临时邮箱机器人",
	CurrentPrefix:     "当前前缀:",
	CurrentDomains:    "当前域名:",
	AvailableCommands: "可用命令:",

	UnableGetUser: "无法获取用户信息",
	NoPermission:  "没有使用权限",
	NotConfigured: "此功能未配置",

	CreateSuccess:   "创建成功",
	CreateFailed:    "创建失败:",
	AddressLabel:    "地址:",
	PasswordLabel:   "密码:",
	CredentialLabel: "凭证:",

	InputCredential: "请输入邮箱地址凭证",
	InputAddress:    "请输入邮箱地址",
	BindSuccess:     "绑定成功",
	BindFailed:      "绑定失败:",
	UnbindSuccess:   "解绑成功",
	UnbindFailed:    "解绑失败:",
	NotBound:        "该地址未绑定",
	DeleteSuccess:   "删除成功:",
	DeleteFailed:    "删除失败:",

	AddressList:        "邮箱地址列表",
	GetAddressFailed:   "获取地址失败:",
	CleanSuccess:       "清理无效地址成功",
	CleanFailed:        "清理失败:",
	CurrentAddressList: "当前地址列表:",

	LangDisabled:   "多语言功能未启用",
	LangSetSuccess: "语言设置成功:",
	CurrentLang:    "当前语言:",
	SelectLang:     "请选择语言:",

	NotBoundAddress: "未绑定此地址",
	InvalidAddress:  "无效的邮箱地址",
	NoMoreMail:      "没有更多邮件了",
	GetMailFailed:   "获取邮件失败:",
	PrevBtn:         "上一封",
	NextBtn:         "下一封",
	ViewMailBtn:     "查看邮件",
	TooLong:         "邮件过长, 请在应用中查看完整内容",
	NoSender:        "无发件人",
	ParseFailed:     "邮件解析失败:",

	TopicOnly:        "请在超级群组的话题中使用此命令",
	TopicIDLabel:     "话题 ID:",
	TopicPushEnabled: "新邮件将推送到此话题",
}

var packEN = Pack{
	Code: "en",

	Welcome:           "Welcome to the temp mail bot",
	CurrentPrefix:     "Current prefix:",
	CurrentDomains:    "Current domains:",
	AvailableCommands: "Available commands:",

	UnableGetUser: "Unable to get user info",
	NoPermission:  "No permission",
	NotConfigured: "This feature is not configured",

	CreateSuccess:   "Created successfully",
	CreateFailed:    "Create failed:",
	AddressLabel:    "Address:",
	PasswordLabel:   "Password:",
	CredentialLabel: "Credential:",

	InputCredential: "Please provide an address credential",
	InputAddress:    "Please provide an address",
	BindSuccess:     "Bound successfully",
	BindFailed:      "Bind failed:",
	UnbindSuccess:   "Unbound successfully",
	UnbindFailed:    "Unbind failed:",
	NotBound:        "Address is not bound",
	DeleteSuccess:   "Deleted:",
	DeleteFailed:    "Delete failed:",

	AddressList:        "Address list",
	GetAddressFailed:   "Failed to get addresses:",
	CleanSuccess:       "Invalid addresses cleaned",
	CleanFailed:        "Clean failed:",
	CurrentAddressList: "Current address list:",

	LangDisabled:   "Per-user language is disabled",
	LangSetSuccess: "Language set to:",
	CurrentLang:    "Current language:",
	SelectLang:     "Select a language:",

	NotBoundAddress: "Address not owned:",
	InvalidAddress:  "Invalid address",
	NoMoreMail:      "No more mail",
	GetMailFailed:   "Failed to get mail:",
	PrevBtn:         "Prev",
	NextBtn:         "Next",
	ViewMailBtn:     "View mail",
	TooLong:         "Message too long, view the rest in the app",
	NoSender:        "no sender",
	ParseFailed:     "Failed to parse mail:",

	TopicOnly:        "Use this command inside a supergroup topic",
	TopicIDLabel:     "Topic ID:",
	TopicPushEnabled: "New mail will be pushed to this topic",
}

// Supported reports whether code names a supported language.
func Supported(code string) bool {
	return code == "zh" || code == "en"
}

// PackFor returns the message pack for a language code, falling back to
// Chinese for unknown codes.
func PackFor(code string) Pack {
	if code == "en" {
		return packEN
	}
	return packZH
}
