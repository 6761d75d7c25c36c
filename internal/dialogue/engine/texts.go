package engine

const (
	textConfigError     = "⚠️ <b>Ошибка конфигурации бота.</b>\nАдминистраторы уже уведомлены, попробуйте позже.\n\n<code>%s</code>"
	textNodeMissing     = "⚠️ Что-то пошло не так: экран не найден. Нажмите /start, чтобы начать заново."
	textActionFailed    = "⚠️ Не удалось обработать сообщение. Попробуйте ещё раз или нажмите /start."
	textEmptyScreen     = "…"
	textConfirmRelay    = "Я не нашёл такой команды 🤷‍♂️\n\nПередать ваше сообщение координатору?\n\n<i>%s</i>"
	textRelaySent       = "✅ Сообщение передано координатору. Пишите сюда, я всё перешлю.\nЧтобы вернуться к меню, нажмите любую кнопку."
	textRelayDeclined   = "Хорошо, сообщение не отправлено."
	textRelayStale      = "Этот запрос уже неактуален."
	textRelayOff        = "⚠️ Связь с координатором не настроена. Пожалуйста, воспользуйтесь кнопками меню."
	textRelayFailed     = "❌ Не удалось связаться с координатором. Проверьте соединение и попробуйте позже."
	textRelayUserHeader = "📩 <b>Новое обращение</b>"
	textRelayUserReply  = "💬 <b>Ответ пользователя</b>"
	textRelayBody       = "%s\nID: <code>%d</code>\nUser: %s\nЭтап: <code>%s</code>\n\n%s"
	textOperatorReply   = "👩‍💻 <b>Ответ координатора:</b>\n\n%s"
	textOperatorInit    = "👩‍💻 <b>Сообщение от координатора:</b>\n\n%s"
	textDeliverFailed   = "❌ Не удалось доставить:\n%v"
	textSendUsage       = "⚠️ Формат: <code>/send ID ТЕКСТ</code>"
	textSendBadID       = "❌ ID должен быть числом."
	textUserID          = "Ваш Telegram ID: <code>%d</code>\n%s"
	textIsAdmin         = "Вы администратор 🛠"
	textIsUser          = "Вы обычный пользователь"
	textUserHelp        = "Доступные команды:\n/start - Начать сначала\n/id - Узнать свой ID"
	textOperatorStart   = "👋 <b>Привет, администрация!</b>\n\nВ этом чате бот работает в <b>режиме администратора</b>.\nПользовательские кнопки здесь отключены.\n\nℹ️ Нажмите /help для списка команд."
	textOperatorHelp    = "🤖 <b>Справка для координаторов</b>\n\n1. <b>Ответ пользователю:</b>\nСделайте <b>Reply</b> на сообщение бота с ID пользователя.\n\n2. <b>Написать первым:</b>\n<code>/send ID ТЕКСТ</code>\n\n3. <b>Узнать ID:</b>\n/id"
	textDiagNode        = "🧭 <b>NodeResolutionError</b>\nУзел: <code>%s</code>\nПользователь: <code>%d</code>\nТекущий узел: <code>%s</code>\n\n<pre>%s</pre>"
	textDiagAction      = "🛑 <b>Ошибка при обработке сообщения</b>\nПользователь: <code>%d</code>\nУзел: <code>%s</code>\nДействие: <code>%s</code>\n\n<pre>%s</pre>"
	textDiagConfig      = "⚙️ <b>ConfigError</b>\n\n<pre>%s</pre>"

	buttonRelayYes = "✅ Да, отправить"
	buttonRelayNo  = "❌ Нет"
	dataRelayYes   = "relay:yes"
	dataRelayNo    = "relay:no"

	reactionSeen = "👀"
	reactionOK   = "👍"
)
