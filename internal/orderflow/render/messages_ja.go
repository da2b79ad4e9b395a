package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Japanese

	message.SetString(lang, "order.intake.prompt", "下のリンクからご注文内容をご記入ください。注文番号は入力済みです。")
	message.SetString(lang, "order.intake.alt_text", "注文フォームのリンク")
	message.SetString(lang, "order.intake.open_form", "フォームを開く")
	message.SetString(lang, "order.intake.cancel", "キャンセル")
	message.SetString(lang, "order.intake.retry", "注文フォームをご用意できませんでした。しばらくしてからもう一度お試しください。")
	message.SetString(lang, "order.intake.link_failure", "注文 %s のフォームリンクを作成できませんでした。お客様には再試行をお願いしています。")

	message.SetString(lang, "order.summary.title", "ご注文 %s")
	message.SetString(lang, "order.summary.shop", "受取店舗: %s")
	message.SetString(lang, "order.summary.delivery_date", "配達希望日: %s")
	message.SetString(lang, "order.summary.item", "%s × %s")
	message.SetString(lang, "order.summary.comment", "備考: %s")

	message.SetString(lang, "order.confirmation.header", "ご注文ありがとうございます。以下の内容で承りました。")
	message.SetString(lang, "order.alert.header", "新しい注文が届きました。")
	message.SetString(lang, "order.reconcile.miss", "注文 %s の回答が届きましたが、対応する注文依頼が見つかりませんでした。")

	message.SetString(lang, "reply.cancelled", "かしこまりました。ご依頼をキャンセルしました。")
	message.SetString(lang, "reply.question", "お問い合わせありがとうございます。担当者よりこちらで返信いたします。")
	message.SetString(lang, "reply.welcome", "%sさん、友だち追加ありがとうございます！ご注文の際は「注文」と送ってください。")
	message.SetString(lang, "reply.admin_registered", "管理者として登録しました。")
}
