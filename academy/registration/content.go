package registration

import (
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/iteachbot/core/telegram/format"
)

// Texts are legacy Telegram Markdown. User-supplied values pass through format.MD.
const (
	textWelcome = "Assalomu alaykum!\n*ITeach Academy*ga xush kelibsiz! 🎓\n\n" +
		"Ro'yxatdan o'tish uchun quyidagi savollarga javob bering."
	textIdleHint = "Ro'yxatdan o'tish uchun /start buyrug'ini yuboring yoki pastdagi tugmani bosing."
	textNothing  = "Hozir faol ro'yxatdan o'tish jarayoni yo'q. Boshlash uchun /start ni bosing."

	textCourses  = "📚 Qaysi *kurs*da o'qimoqchisiz?\n_Iltimos, quyidagilardan birini tanlang._"
	textLevels   = "📊 Iltimos, *darajangizni* tanlang:"
	textSections = "🗂 Iltimos, *bo'lim*ni tanlang:"
	textName     = "✍️ *Iltimos, to'liq ism-familiyangizni kiriting.*\n_Masalan: Alamozon Alovuddinov_"
	textAge      = "🎂 *Yoshingizni kiriting:*"
	textPhone    = "📞 *Telefon raqamingizni kiriting* (format: `+998XXXXXXXXX`) yoki pastdagi tugma orqali yuboring."
	textEdit     = "✏️ Qaysi ma'lumotni o'zgartirmoqchisiz?"

	textBadSelection = "⚠️ Noto'g'ri tanlov. Qaytadan urinib ko'ring."
	textBadName      = "⚠️ Ism-familiya noto'g'ri. 2 dan 5 gacha so'z, faqat lotin harflari bo'lsin."
	textBadAge       = "⚠️ Yosh noto'g'ri. 3 dan 100 gacha bo'lgan butun son kiriting."
	textBadPhone     = "⚠️ Telefon raqam noto'g'ri. Format: `+998XXXXXXXXX`."
	textForeignPhone = "⚠️ Iltimos, o'zingizning raqamingizni yuboring."
	textPhoneOK      = "✅ Telefon raqam qabul qilindi."

	textCancelled = "❌ Ro'yxatdan o'tish bekor qilindi."
	textCorrupted = "Ma'lumotlar yetarli emas. Iltimos, qaytadan boshlang: /start"
	textServerErr = "Server xatosi yuz berdi. Iltimos, birozdan so'ng qayta urinib ko'ring."
	textSuccess   = "🎉 *Tabriklaymiz!* Siz ro'yxatdan o'tdingiz.\n" +
		"Tez orada siz bilan telefon raqamingiz orqali bog'lanamiz."

	noUsername = "@Yo'q"
	dateLayout = "2006-01-02 15:04:05"
)

// HelpText explains the bot's commands.
func HelpText() string {
	return "ℹ️ *ITeach Academy* ro'yxatdan o'tish boti\n\n" +
		"/start - ro'yxatdan o'tishni boshlash\n" +
		"/cancel - jarayonni bekor qilish\n" +
		"/help - yordam"
}

// BuildReviewText renders the summary shown before confirmation. The level
// line is present only when the course uses levels.
func BuildReviewText(d Draft) string {
	course, _ := CourseLabel(d.CourseKey)
	section, _ := SectionLabel(d.CourseKey, d.SectionKey)
	lines := []string{
		"🧾 *Ma'lumotlarni ko'rib chiqing:*",
		"",
		"• 📚 *Kurs:* " + course,
	}
	if RequiresLevel(d.CourseKey) {
		level, _ := LevelLabel(d.LevelKey)
		lines = append(lines, "• 📊 *Daraja:* "+level)
	}
	lines = append(lines,
		"• 🗂 *Bo'lim:* "+section,
		"• 👤 *Ism familiya:* "+format.MD(d.FullName),
		"• 🎂 *Yosh:* "+strconv.Itoa(d.Age),
		"• 📱 *Telefon:* "+format.MD(d.Phone),
	)
	return strings.Join(lines, "\n")
}

// AdminNote carries the extra facts included in the administrator message.
type AdminNote struct {
	// Previous counts registrations this user stored before this one.
	Previous int
	Location *time.Location
}

// BuildAdminText renders the administrator notification for r.
func BuildAdminText(r Registration, note AdminNote) string {
	loc := note.Location
	if loc == nil {
		loc = time.UTC
	}
	level := r.Level
	if level == "" {
		level = "-"
	}
	username := noUsername
	if r.Username != "" {
		username = "@" + r.Username
	}
	lines := []string{
		"🔔 *Yangi o'quvchi ro'yxatdan o'tdi*",
		"",
		"👤 *Ism:* " + format.MD(r.FullName),
		"🎂 *Yosh:* " + strconv.Itoa(r.Age),
		"📱 *Telefon:* " + format.MD(r.Phone),
		"📚 *Kurs:* " + r.Course,
		"🗂 *Bo'lim:* " + r.Section,
		"📊 *Daraja:* " + level,
		"🆔 *Telegram ID:* " + strconv.FormatInt(r.UserID, 10),
		"👤 *Username:* " + format.MD(username),
		"📅 *Sana:* " + r.CreatedAt.In(loc).Format(dateLayout) + " (" + loc.String() + ")",
	}
	if r.PublicID != "" {
		lines = append(lines, "🔖 *ID:* "+format.MD(r.PublicID))
	}
	if note.Previous > 0 {
		lines = append(lines, "🔁 *Qayta ro'yxatdan o'tish:* avval "+strconv.Itoa(note.Previous)+" marta")
	}
	return strings.Join(lines, "\n")
}
